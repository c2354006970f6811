package port

import (
	"context"

	"github.com/mzton/vantage/internal/core/domain"
)

// MapRendererPort receives imperative camera moves for one map session.
type MapRendererPort interface {
	FlyTo(ctx context.Context, sessionID string, cmd domain.CameraCommand) error
	EaseTo(ctx context.Context, sessionID string, cmd domain.CameraCommand) error
}

// ClusterIndexPort answers cluster queries for the rendered listing set.
type ClusterIndexPort interface {
	Clusters(ctx context.Context, zoom float64, bounds *domain.Bounds) ([]domain.ClusterFeature, error)
	// ExpansionZoom is the zoom at which the cluster splits into smaller groups.
	ExpansionZoom(ctx context.Context, clusterID int64) (float64, error)
	// ClusterCenter returns the mean position of the cluster members.
	ClusterCenter(ctx context.Context, clusterID int64) (domain.GeoPoint, error)
}
