// Package platform defines the contracts implemented by catalog sources.
package platform

import (
	"context"

	"github.com/lukman83/skinscout/internal/models"
)

// Catalog fetches product listings from a makeup/skincare catalog.
type Catalog interface {
	Name() string
	AllProducts(ctx context.Context) ([]*models.Product, error)
	ProductsByBrand(ctx context.Context, brand string) ([]*models.Product, error)
	ProductsByType(ctx context.Context, productType string) ([]*models.Product, error)
	SearchProducts(ctx context.Context, brand, productType string) ([]*models.Product, error)
}

// SearchPage is one page of a free-text search.
type SearchPage struct {
	Count     int               `json:"count"`
	Page      int               `json:"page"`
	PageCount int               `json:"page_count"`
	Products  []*models.Product `json:"products"`
}

// TermSearcher runs free-text searches against a catalog that supports them.
type TermSearcher interface {
	Name() string
	SearchTerms(ctx context.Context, terms string, page int) (*SearchPage, error)
}
