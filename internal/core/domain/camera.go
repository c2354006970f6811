package domain

import "time"

type CameraCommandKind string

const (
	CameraFlyTo  CameraCommandKind = "fly_to"
	CameraEaseTo CameraCommandKind = "ease_to"
)

// CameraCommand is a one-shot animated camera move pushed to the renderer.
// Bearing and Pitch are nil for ease-to moves.
type CameraCommand struct {
	Kind       CameraCommandKind `json:"kind"`
	Center     GeoPoint          `json:"center"`
	Zoom       float64           `json:"zoom"`
	Bearing    *float64          `json:"bearing,omitempty"`
	Pitch      *float64          `json:"pitch,omitempty"`
	DurationMs int64             `json:"durationMs"`
}

func NewFlyTo(center GeoPoint, zoom, bearing, pitch float64, d time.Duration) CameraCommand {
	return CameraCommand{
		Kind:       CameraFlyTo,
		Center:     center,
		Zoom:       zoom,
		Bearing:    &bearing,
		Pitch:      &pitch,
		DurationMs: d.Milliseconds(),
	}
}

func NewEaseTo(center GeoPoint, zoom float64, d time.Duration) CameraCommand {
	return CameraCommand{
		Kind:       CameraEaseTo,
		Center:     center,
		Zoom:       zoom,
		DurationMs: d.Milliseconds(),
	}
}
