package domain

import (
	"math"
	"time"
)

// ViewState is the camera of one map session.
type ViewState struct {
	Latitude           float64       `json:"latitude"`
	Longitude          float64       `json:"longitude"`
	Zoom               float64       `json:"zoom"`
	Bearing            float64       `json:"bearing"`
	Pitch              float64       `json:"pitch"`
	TransitionDuration time.Duration `json:"-"`
}

// TransitionMs is the transition duration in milliseconds, 0 when the state is not animated.
func (v ViewState) TransitionMs() int64 {
	return v.TransitionDuration.Milliseconds()
}

// ViewStateUpdate is a partial camera change. Nil fields are left untouched.
type ViewStateUpdate struct {
	Latitude           *float64
	Longitude          *float64
	Zoom               *float64
	Bearing            *float64
	Pitch              *float64
	TransitionDuration *time.Duration
}

// AutoTiltConfig couples pitch to zoom.
type AutoTiltConfig struct {
	ZoomThreshold   float64 `json:"zoomThreshold"`
	PitchMultiplier float64 `json:"pitchMultiplier"`
	MaxPitch        float64 `json:"maxPitch"`
}

// PitchForZoom is 0 up to the threshold, then grows linearly and caps at MaxPitch.
func (c AutoTiltConfig) PitchForZoom(zoom float64) float64 {
	if zoom <= c.ZoomThreshold {
		return 0
	}
	return math.Min((zoom-c.ZoomThreshold)*c.PitchMultiplier, c.MaxPitch)
}

// ClampPitch keeps an explicit pitch inside [0, MaxPitch].
func (c AutoTiltConfig) ClampPitch(pitch float64) float64 {
	if math.IsNaN(pitch) || pitch < 0 {
		return 0
	}
	return math.Min(pitch, c.MaxPitch)
}

// NormalizeBearing wraps degrees into (-180, 180].
func NormalizeBearing(bearing float64) float64 {
	if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return 0
	}
	b := math.Mod(bearing, 360)
	if b > 180 {
		b -= 360
	} else if b <= -180 {
		b += 360
	}
	return b
}

// MapStyle is a named base map style.
type MapStyle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// MapFeature names a toggleable rendering feature.
type MapFeature string

const (
	FeatureBuildings3D MapFeature = "buildings3d"
	FeatureTerrain     MapFeature = "terrain"
	FeatureClusters    MapFeature = "clusters"
)

func ParseMapFeature(s string) (MapFeature, error) {
	switch f := MapFeature(s); f {
	case FeatureBuildings3D, FeatureTerrain, FeatureClusters:
		return f, nil
	}
	return "", ErrUnknownFeature
}

// MapToggles holds the rendering flags of a session.
type MapToggles struct {
	Show3DBuildings bool `json:"show3DBuildings"`
	ShowTerrain     bool `json:"showTerrain"`
	ShowClusters    bool `json:"showClusters"`
}

// MapError is the persistent rendering failure banner.
type MapError struct {
	HasError bool   `json:"hasError"`
	Message  string `json:"message,omitempty"`
}

// Building3DConfig drives the fill-extrusion layer.
type Building3DConfig struct {
	MinZoom float64 `json:"minZoom"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}
