package repository

import (
	"context"

	"github.com/quayside/storefront/internal/domain/model"
)

// CatalogRepository reads products and adjusts per-variant stock. Reads go
// to the live store, never a cache.
type CatalogRepository interface {
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	DecrementVariantStock(ctx context.Context, productID, variantSKU string, by int) error
}
