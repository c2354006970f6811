package usecases_port

import (
	"context"

	"github.com/mzton/vantage/internal/core/domain"

	"github.com/paulmach/orb/geojson"
)

type ListingQueryUseCase interface {
	FindAll(ctx context.Context) ([]domain.Listing, error)
	FindByID(ctx context.Context, id string) (domain.Listing, bool, error)
	FindByBounds(ctx context.Context, bounds domain.Bounds) ([]domain.Listing, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Listing, error)
	Search(ctx context.Context, query domain.SearchQuery) (domain.SearchResult, error)
	GeoJSON(ctx context.Context) (*geojson.FeatureCollection, error)
}

type ClusterQueryUseCase interface {
	Execute(ctx context.Context, zoom float64, bounds *domain.Bounds, clustering bool) ([]domain.ClusterFeature, error)
}
