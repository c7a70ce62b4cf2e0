// Package catalog is the read-only product source. The export pipeline
// never writes to it except for per-product export bookkeeping.
package catalog

import (
	"context"

	"alloia/internal/models"
)

// Query narrows the catalog read. Virtual/out-of-stock gating is applied
// by the extractor after the read, not here.
type Query struct {
	Statuses           []string
	ExcludeCategoryIDs []int64
	IncludeIDs         []int64
	MinPrice           *float64
	MaxPrice           *float64
}

type Store interface {
	// ListProducts returns products matching the query with their
	// categories, tags, attributes and variants resolved.
	ListProducts(ctx context.Context, q Query) ([]models.Product, error)

	// GetProduct resolves a single product, or nil when the id does not
	// resolve to a full product record.
	GetProduct(ctx context.Context, id int64) (*models.Product, error)

	// GetProductBySlug resolves a product by its URL slug, or nil when
	// no product carries it.
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// MetaStore records per-product export outcomes.
type MetaStore interface {
	SetExportMeta(ctx context.Context, meta models.ProductExportMeta) error
	GetExportMeta(ctx context.Context, productID int64) (*models.ProductExportMeta, error)
}
