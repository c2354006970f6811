package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"

	"github.com/paulmach/orb/geojson"
)

// ListingQueryUseCase is the read side of the listing store.
type ListingQueryUseCase struct {
	repo port.ListingRepositoryPort
}

func NewListingQueryUseCase(repo port.ListingRepositoryPort) *ListingQueryUseCase {
	return &ListingQueryUseCase{repo: repo}
}

func (uc *ListingQueryUseCase) FindAll(ctx context.Context) ([]domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "FindAllListings"})
	ucLogger.Debug("Use case started", nil)

	listings, err := uc.repo.FindAll(ctx)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Debug("Use case finished successfully", port.Fields{"count": len(listings)})
	return listings, nil
}

// FindByID reports an unknown id with found == false and a nil error.
func (uc *ListingQueryUseCase) FindByID(ctx context.Context, id string) (domain.Listing, bool, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "FindListingByID",
		"listing_id": id,
	})

	listing, found, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return domain.Listing{}, false, err
	}
	if !found {
		ucLogger.Debug("Listing not found", nil)
	}
	return listing, found, nil
}

func (uc *ListingQueryUseCase) FindByBounds(ctx context.Context, bounds domain.Bounds) ([]domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "FindListingsByBounds",
		"bounds":   bounds,
	})

	listings, err := uc.repo.FindByBounds(ctx, bounds)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Debug("Use case finished successfully", port.Fields{"count": len(listings)})
	return listings, nil
}

func (uc *ListingQueryUseCase) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":  "FindNearbyListings",
		"lat":       lat,
		"lng":       lng,
		"radius_km": radiusKm,
	})

	if !domain.ValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("%w: center (%v, %v)", domain.ErrInvalidCoordinates, lat, lng)
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil, fmt.Errorf("radius must be a non-negative number, got %v", radiusKm)
	}

	listings, err := uc.repo.FindNearby(ctx, lat, lng, radiusKm)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Debug("Use case finished successfully", port.Fields{"count": len(listings)})
	return listings, nil
}

func (uc *ListingQueryUseCase) Search(ctx context.Context, query domain.SearchQuery) (domain.SearchResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SearchListings",
		"keyword":  query.Keyword,
		"limit":    query.Limit,
		"offset":   query.Offset,
	})
	ucLogger.Info("Use case started", nil)

	result, err := uc.repo.Search(ctx, query)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return domain.SearchResult{}, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   result.Total,
		"items_on_page": len(result.Listings),
		"has_more":      result.HasMore,
	})
	return result, nil
}

// GeoJSON projects every listing into the point collection fed to the renderer.
func (uc *ListingQueryUseCase) GeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	listings, err := uc.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ListingsToGeoJSON(listings), nil
}
