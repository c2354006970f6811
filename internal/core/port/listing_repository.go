package port

import (
	"context"

	"github.com/mzton/vantage/internal/core/domain"
)

// ListingRepositoryPort is the listing source. Implementations return
// listings in load order and report an unknown id with found == false.
type ListingRepositoryPort interface {
	FindAll(ctx context.Context) ([]domain.Listing, error)
	FindByID(ctx context.Context, id string) (listing domain.Listing, found bool, err error)
	FindByBounds(ctx context.Context, bounds domain.Bounds) ([]domain.Listing, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Listing, error)
	Search(ctx context.Context, query domain.SearchQuery) (domain.SearchResult, error)
}

// ListingFinder is the subset of the repository needed to resolve a selection.
type ListingFinder interface {
	FindByID(ctx context.Context, id string) (listing domain.Listing, found bool, err error)
}
