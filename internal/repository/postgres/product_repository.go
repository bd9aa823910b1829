// backend-go/internal/repository/postgres/product_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velocityiq/backend-go/internal/domain"
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) ListForecastable(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, sku, category, unit_cost, current_stock, reorder_point, supplier_id, created_at
		FROM products
		WHERE current_stock IS NOT NULL
		ORDER BY name
	`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list forecastable products: %w", err)
	}

	return products, nil
}

func (r *productRepository) ListWithSuppliers(ctx context.Context) ([]domain.ProductWithSupplier, error) {
	query := `
		SELECT
			p.id, p.name, p.sku, p.category, p.unit_cost, p.current_stock,
			p.reorder_point, p.supplier_id, p.created_at,
			s.name AS supplier_name,
			s.lead_time_days,
			s.reliability_score
		FROM products p
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		ORDER BY p.name
	`

	var products []domain.ProductWithSupplier
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products with suppliers: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT id, name, sku, category, unit_cost, current_stock, reorder_point, supplier_id, created_at
		FROM products
		WHERE sku = $1
	`

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by sku: %w", err)
	}

	return &product, nil
}

func (r *productRepository) Stats(ctx context.Context) (domain.ProductStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_products,
			COUNT(*) FILTER (WHERE COALESCE(current_stock, 0) <= reorder_point) AS low_stock_products,
			COALESCE(SUM(COALESCE(current_stock, 0) * unit_cost), 0)::float8 AS total_inventory_value
		FROM products
	`

	var stats domain.ProductStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return domain.ProductStats{}, fmt.Errorf("failed to get product stats: %w", err)
	}

	return stats, nil
}
