package catalog

import (
	"context"
	"fmt"
)

// Service provides business logic for catalog operations.
type Service struct {
	repo Repository
}

// NewService constructs a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateProduct registers a new product.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error) {
	product := Product{
		SKU:               req.SKU,
		Name:              req.Name,
		BuyPrice:          req.BuyPrice,
		SellPrice:         req.SellPrice,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		IsActive:          true,
	}
	created, err := s.repo.Insert(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// UpdateProduct applies a partial update.
func (s *Service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.BuyPrice != nil {
		product.BuyPrice = *req.BuyPrice
	}
	if req.SellPrice != nil {
		product.SellPrice = *req.SellPrice
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// GetProduct loads one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// ListProducts returns a filtered page of products.
func (s *Service) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

// CostLookup builds the product-cost resolver the profit calculator consumes:
// a snapshot of buy prices for the given ids, closed over as a pure function.
func (s *Service) CostLookup(ctx context.Context, ids []int64) (func(productID int64) (float64, bool), error) {
	prices, err := s.repo.BuyPrices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load buy prices: %w", err)
	}
	return func(productID int64) (float64, bool) {
		price, ok := prices[productID]
		return price, ok
	}, nil
}

// LowStock lists active products at or under their threshold.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.repo.ListBelowThreshold(ctx)
}
