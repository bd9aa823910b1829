// backend-go/internal/repository/product_repository.go
package repository

import (
	"context"

	"github.com/velocityiq/backend-go/internal/domain"
)

type ProductRepository interface {
	// ListForecastable returns products with a known stock level, ordered
	// by name. Products with null stock are excluded from forecasting.
	ListForecastable(ctx context.Context) ([]domain.Product, error)
	ListWithSuppliers(ctx context.Context) ([]domain.ProductWithSupplier, error)
	// GetBySKU returns nil when no product carries the SKU.
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Stats(ctx context.Context) (domain.ProductStats, error)
}
