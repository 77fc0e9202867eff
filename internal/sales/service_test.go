package sales

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

type mockRepository struct {
	sales  map[int64]*Sale
	stock  map[int64]float64
	nextID int64
	seq    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{sales: make(map[int64]*Sale), stock: make(map[int64]float64), nextID: 1}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	sale.ID = m.nextID
	m.nextID++
	stored := sale
	m.sales[sale.ID] = &stored
	return sale, nil
}

func (m *mockRepository) InsertItems(ctx context.Context, saleID int64, items []SaleItem) ([]SaleItem, error) {
	for i := range items {
		items[i].ID = int64(i + 1)
		items[i].SaleID = saleID
	}
	m.sales[saleID].Items = items
	return items, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, saleID int64, from, to ledger.SaleStatus) error {
	sale, ok := m.sales[saleID]
	if !ok || sale.Status != from {
		return ErrInvalidTransition
	}
	sale.Status = to
	return nil
}

func (m *mockRepository) AdjustProductStock(ctx context.Context, productID int64, delta float64) error {
	if _, ok := m.stock[productID]; !ok {
		return ErrUnknownProduct
	}
	m.stock[productID] += delta
	return nil
}

func (m *mockRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("SAL-%s-%05d", date.Format("20060102"), m.seq), nil
}

func (m *mockRepository) GetSale(ctx context.Context, id int64) (Sale, error) {
	sale, ok := m.sales[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return *sale, nil
}

func (m *mockRepository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var out []Sale
	for _, sale := range m.sales {
		out = append(out, *sale)
	}
	return out, len(out), nil
}

func (m *mockRepository) SnapshotSales(ctx context.Context, from, to time.Time) ([]ledger.Sale, error) {
	var out []ledger.Sale
	for _, sale := range m.sales {
		out = append(out, sale.Snapshot())
	}
	return out, nil
}

type mockCatalog struct {
	prices map[int64]float64
}

func (m *mockCatalog) BuyPrices(ctx context.Context, ids []int64) (map[int64]float64, error) {
	out := make(map[int64]float64)
	for _, id := range ids {
		if price, ok := m.prices[id]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func newTestService(repo *mockRepository, catalog *mockCatalog) *Service {
	return NewService(slog.Default(), repo, catalog, nil)
}

func TestCreateSaleCapturesCOGSAndDecrementsStock(t *testing.T) {
	repo := newMockRepository()
	repo.stock[7] = 10
	catalog := &mockCatalog{prices: map[int64]float64{7: 8000}}
	svc := newTestService(repo, catalog)

	sale, err := svc.CreateSale(context.Background(), 1, CreateSaleRequest{
		Date:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Status: ledger.SaleStatusCompleted,
		Items:  []CreateSaleItemRequest{{ProductID: 7, Quantity: 3, SellPrice: 15000}},
	})
	require.NoError(t, err)

	assert.Equal(t, 45000.0, sale.Total)
	require.Len(t, sale.Items, 1)
	require.NotNil(t, sale.Items[0].COGS)
	assert.Equal(t, 24000.0, *sale.Items[0].COGS, "cost is buy price times quantity at creation")
	assert.Equal(t, 7.0, repo.stock[7], "completed sale must consume stock")
	assert.Contains(t, sale.Number, "SAL-20240410-")
}

func TestCreateQuotationLeavesStockAlone(t *testing.T) {
	repo := newMockRepository()
	repo.stock[7] = 10
	catalog := &mockCatalog{prices: map[int64]float64{7: 8000}}
	svc := newTestService(repo, catalog)

	_, err := svc.CreateSale(context.Background(), 1, CreateSaleRequest{
		Date:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Status: ledger.SaleStatusQuotation,
		Items:  []CreateSaleItemRequest{{ProductID: 7, Quantity: 3, SellPrice: 15000}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, repo.stock[7])
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	repo := newMockRepository()
	catalog := &mockCatalog{prices: map[int64]float64{}}
	svc := newTestService(repo, catalog)

	_, err := svc.CreateSale(context.Background(), 1, CreateSaleRequest{
		Date:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Status: ledger.SaleStatusCompleted,
		Items:  []CreateSaleItemRequest{{ProductID: 99, Quantity: 1, SellPrice: 1000}},
	})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestInvoiceLifecycle(t *testing.T) {
	repo := newMockRepository()
	repo.stock[7] = 10
	catalog := &mockCatalog{prices: map[int64]float64{7: 8000}}
	svc := newTestService(repo, catalog)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, 1, CreateSaleRequest{
		Date:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Status: ledger.SaleStatusQuotation,
		Items:  []CreateSaleItemRequest{{ProductID: 7, Quantity: 2, SellPrice: 15000}},
	})
	require.NoError(t, err)

	invoice, err := svc.ConvertToInvoice(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.SaleStatusInvoice, invoice.Status)
	assert.Equal(t, 10.0, repo.stock[7], "invoicing must not move stock")

	paid, err := svc.MarkPaid(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.SaleStatusCompleted, paid.Status)
	assert.Equal(t, 8.0, repo.stock[7], "payment realizes the sale and consumes stock")
}

func TestVoidCompletedSaleRestoresStock(t *testing.T) {
	repo := newMockRepository()
	repo.stock[7] = 10
	catalog := &mockCatalog{prices: map[int64]float64{7: 8000}}
	svc := newTestService(repo, catalog)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, 1, CreateSaleRequest{
		Date:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Status: ledger.SaleStatusCompleted,
		Items:  []CreateSaleItemRequest{{ProductID: 7, Quantity: 4, SellPrice: 15000}},
	})
	require.NoError(t, err)
	require.Equal(t, 6.0, repo.stock[7])

	voided, err := svc.VoidSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.SaleStatusVoided, voided.Status)
	assert.Equal(t, 10.0, repo.stock[7])
}

func TestVoidedSaleIsTerminal(t *testing.T) {
	repo := newMockRepository()
	repo.stock[7] = 10
	catalog := &mockCatalog{prices: map[int64]float64{7: 8000}}
	svc := newTestService(repo, catalog)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, 1, CreateSaleRequest{
		Date:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Status: ledger.SaleStatusQuotation,
		Items:  []CreateSaleItemRequest{{ProductID: 7, Quantity: 1, SellPrice: 15000}},
	})
	require.NoError(t, err)

	_, err = svc.VoidSale(ctx, sale.ID)
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "a voided document can never be paid")
	_, err = svc.ConvertToInvoice(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
