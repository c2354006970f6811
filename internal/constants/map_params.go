package constants

import (
	"time"

	"github.com/mzton/vantage/internal/core/domain"
)

// InitialViewState is lower Manhattan at city scale.
var InitialViewState = domain.ViewState{
	Latitude:  40.7128,
	Longitude: -74.006,
	Zoom:      13,
	Bearing:   0,
	Pitch:     0,
}

var MapStyles = []domain.MapStyle{
	{ID: "light", Name: "Light", URL: "mapbox://styles/mapbox/light-v11"},
	{ID: "dark", Name: "Dark", URL: "mapbox://styles/mapbox/dark-v11"},
	{ID: "streets", Name: "Streets", URL: "mapbox://styles/mapbox/streets-v12"},
	{ID: "satellite", Name: "Satellite", URL: "mapbox://styles/mapbox/satellite-streets-v12"},
}

const DefaultMapStyle = "light"

var ClusterConfig = domain.ClusterConfig{
	MaxZoom:   14,
	Radius:    50,
	MinPoints: 2,
	Base:      domain.ClusterStyle{Radius: 20, Color: "#6366f1"},
	Steps: []domain.ClusterStep{
		{MinCount: 5, Style: domain.ClusterStyle{Radius: 30, Color: "#4f46e5"}},
		{MinCount: 10, Style: domain.ClusterStyle{Radius: 40, Color: "#4338ca"}},
	},
	Point: domain.ClusterStyle{Radius: 8, Color: "#6366f1"},
}

var Building3DConfig = domain.Building3DConfig{
	MinZoom: 14,
	Color:   "#e2e8f0",
	Opacity: 0.8,
}

var AutoTiltConfig = domain.AutoTiltConfig{
	ZoomThreshold:   14.5,
	PitchMultiplier: 20,
	MaxPitch:        60,
}

// PriceMarkerMinZoom is the zoom from which price markers replace plain points.
const PriceMarkerMinZoom = 13.5

// Fly-to camera profile used when a listing gets selected.
const (
	FlyToZoom     = 16.0
	FlyToPitch    = 45.0
	FlyToBearing  = -20.0
	FlyToDuration = 1500 * time.Millisecond
)

// EaseToDuration is the camera animation used to expand a cluster.
const EaseToDuration = 500 * time.Millisecond
