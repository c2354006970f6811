package usecase

import (
	"context"
	"math"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// ClusterQueryUseCase returns the markers to draw for a viewport.
type ClusterQueryUseCase struct {
	index    port.ClusterIndexPort
	listings *ListingQueryUseCase
	config   domain.ClusterConfig
}

func NewClusterQueryUseCase(index port.ClusterIndexPort, listings *ListingQueryUseCase, config domain.ClusterConfig) *ClusterQueryUseCase {
	return &ClusterQueryUseCase{index: index, listings: listings, config: config}
}

// Execute groups listings at zoom. With clustering disabled every listing is
// its own point regardless of density.
func (uc *ClusterQueryUseCase) Execute(ctx context.Context, zoom float64, bounds *domain.Bounds, clustering bool) ([]domain.ClusterFeature, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "QueryClusters",
		"zoom":       zoom,
		"clustering": clustering,
	})

	if math.IsNaN(zoom) || zoom < 0 {
		zoom = 0
	}

	if clustering {
		features, err := uc.index.Clusters(ctx, zoom, bounds)
		if err != nil {
			ucLogger.Error("Cluster index returned an error", err, nil)
			return nil, err
		}
		ucLogger.Debug("Use case finished successfully", port.Fields{"features": len(features)})
		return features, nil
	}

	var (
		listings []domain.Listing
		err      error
	)
	if bounds != nil {
		listings, err = uc.listings.FindByBounds(ctx, *bounds)
	} else {
		listings, err = uc.listings.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	features := make([]domain.ClusterFeature, 0, len(listings))
	for _, l := range listings {
		features = append(features, domain.PointFeature(l, uc.config))
	}
	return features, nil
}
