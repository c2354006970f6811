package domain

// GeolocationErrorCode is the failure reason reported by the position provider.
type GeolocationErrorCode string

const (
	GeoPermissionDenied    GeolocationErrorCode = "denied"
	GeoPositionUnavailable GeolocationErrorCode = "unavailable"
	GeoTimeout             GeolocationErrorCode = "timeout"
	GeoUnsupported         GeolocationErrorCode = "unsupported"
)

// Message is the human-readable reason stored in the session state.
func (c GeolocationErrorCode) Message() string {
	switch c {
	case GeoPermissionDenied:
		return "Location permission denied"
	case GeoPositionUnavailable:
		return "Location information unavailable"
	case GeoTimeout:
		return "Location request timed out"
	case GeoUnsupported:
		return "Geolocation is not supported by this browser"
	default:
		return "An unknown error occurred"
	}
}

// GeolocationState is the last position fix or failure of a session.
type GeolocationState struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Error     string   `json:"error,omitempty"`
	IsLoading bool     `json:"isLoading"`
}
