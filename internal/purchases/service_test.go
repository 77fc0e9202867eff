package purchases

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasbook/kasbook/internal/ledger"
)

type stockState struct {
	quantity float64
	buyPrice float64
}

type mockRepository struct {
	purchases map[int64]*Purchase
	stock     map[int64]*stockState
	nextID    int64
	seq       int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{purchases: make(map[int64]*Purchase), stock: make(map[int64]*stockState), nextID: 1}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) InsertPurchase(ctx context.Context, purchase Purchase) (Purchase, error) {
	purchase.ID = m.nextID
	m.nextID++
	stored := purchase
	m.purchases[purchase.ID] = &stored
	return purchase, nil
}

func (m *mockRepository) InsertItems(ctx context.Context, purchaseID int64, items []PurchaseItem) ([]PurchaseItem, error) {
	for i := range items {
		items[i].ID = int64(i + 1)
		items[i].PurchaseID = purchaseID
	}
	m.purchases[purchaseID].Items = items
	return items, nil
}

func (m *mockRepository) ReceiveStock(ctx context.Context, productID int64, quantity, unitCost float64) error {
	state, ok := m.stock[productID]
	if !ok {
		return ErrUnknownProduct
	}
	state.quantity += quantity
	state.buyPrice = unitCost
	return nil
}

func (m *mockRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("PUR-%s-%05d", date.Format("20060102"), m.seq), nil
}

func (m *mockRepository) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	purchase, ok := m.purchases[id]
	if !ok {
		return Purchase{}, ErrNotFound
	}
	return *purchase, nil
}

func (m *mockRepository) ListPurchases(ctx context.Context, req ListPurchasesRequest) ([]Purchase, int, error) {
	var out []Purchase
	for _, purchase := range m.purchases {
		out = append(out, *purchase)
	}
	return out, len(out), nil
}

func (m *mockRepository) SnapshotPurchases(ctx context.Context, from, to time.Time) ([]ledger.MonetaryRecord, error) {
	var out []ledger.MonetaryRecord
	for _, purchase := range m.purchases {
		out = append(out, ledger.MonetaryRecord{Date: purchase.Date, Amount: purchase.Total})
	}
	return out, nil
}

func TestCreatePurchaseReceivesStockAndRefreshesCost(t *testing.T) {
	repo := newMockRepository()
	repo.stock[5] = &stockState{quantity: 2, buyPrice: 7000}
	svc := NewService(slog.Default(), repo, nil)

	purchase, err := svc.CreatePurchase(context.Background(), 1, CreatePurchaseRequest{
		Date:         time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
		SupplierName: "Toko Grosir Makmur",
		Items:        []CreatePurchaseItemRequest{{ProductID: 5, Quantity: 20, UnitCost: 7500}},
	})
	require.NoError(t, err)

	assert.Equal(t, 150000.0, purchase.Total)
	assert.Contains(t, purchase.Number, "PUR-20240405-")
	assert.Equal(t, 22.0, repo.stock[5].quantity)
	assert.Equal(t, 7500.0, repo.stock[5].buyPrice, "receiving stock updates the catalog buy price")
}

func TestCreatePurchaseUnknownProductRollsBack(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(slog.Default(), repo, nil)

	_, err := svc.CreatePurchase(context.Background(), 1, CreatePurchaseRequest{
		Date:         time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
		SupplierName: "Toko Grosir Makmur",
		Items:        []CreatePurchaseItemRequest{{ProductID: 404, Quantity: 1, UnitCost: 1000}},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}
