package rest

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/usecase"
)

var validate = validator.New()

// --- requests ---

type FlyToRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Zoom      *float64 `json:"zoom,omitempty" validate:"omitempty,gte=0,lte=24"`
}

type ViewStateUpdateRequest struct {
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Zoom         *float64 `json:"zoom,omitempty" validate:"omitempty,gte=0,lte=24"`
	Bearing      *float64 `json:"bearing,omitempty"`
	Pitch        *float64 `json:"pitch,omitempty"`
	TransitionMs *int64   `json:"transitionDuration,omitempty" validate:"omitempty,gte=0"`
}

func (r ViewStateUpdateRequest) toDomain() domain.ViewStateUpdate {
	u := domain.ViewStateUpdate{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Zoom:      r.Zoom,
		Bearing:   r.Bearing,
		Pitch:     r.Pitch,
	}
	if r.TransitionMs != nil {
		d := time.Duration(*r.TransitionMs) * time.Millisecond
		u.TransitionDuration = &d
	}
	return u
}

type SetViewStateRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Zoom      *float64 `json:"zoom" validate:"required,gte=0,lte=24"`
	Bearing   *float64 `json:"bearing" validate:"required"`
	Pitch     *float64 `json:"pitch" validate:"required"`
}

type StyleRequest struct {
	Style string `json:"style" validate:"required"`
}

type FeatureRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type MapErrorRequest struct {
	Message *string `json:"message"`
}

type SelectListingRequest struct {
	ListingID string `json:"listingId" validate:"required"`
}

type HoverRequest struct {
	ListingID string `json:"listingId"`
}

type ChatMessageRequest struct {
	Message string `json:"message"`
}

type AnalyzeRequest struct {
	ListingID string `json:"listingId" validate:"required"`
}

type ChatContextRequest struct {
	SelectedListingID *string          `json:"selectedListingId,omitempty"`
	UserLocation      *domain.GeoPoint `json:"userLocation,omitempty"`
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Accuracy  *float64 `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
}

type LocationErrorRequest struct {
	Code string `json:"code" validate:"required"`
}

type MapTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type AIAnalyzeRequest struct {
	Listing *domain.Listing `json:"listing"`
}

type AIChatRequest struct {
	Message string              `json:"message"`
	Context *domain.ChatContext `json:"context,omitempty"`
}

// --- responses ---

type ListingsResponse struct {
	Listings []domain.Listing `json:"listings"`
	Total    int              `json:"total"`
}

type ClustersResponse struct {
	Zoom     float64                 `json:"zoom"`
	Features []domain.ClusterFeature `json:"features"`
}

type MapTokenResponse struct {
	Token      string             `json:"token,omitempty"`
	Source     domain.TokenSource `json:"source"`
	Configured bool               `json:"configured"`
}

type ClusterPaintResponse struct {
	MaxZoom      int   `json:"clusterMaxZoom"`
	Radius       int   `json:"clusterRadius"`
	MinPoints    int   `json:"clusterMinPoints"`
	CircleColor  []any `json:"circleColor"`
	CircleRadius []any `json:"circleRadius"`
}

type MapConfigResponse struct {
	InitialViewState   domain.ViewState        `json:"initialViewState"`
	Styles             []domain.MapStyle       `json:"styles"`
	DefaultStyle       string                  `json:"defaultStyle"`
	Cluster            ClusterPaintResponse    `json:"cluster"`
	Buildings3D        domain.Building3DConfig `json:"buildings3D"`
	AutoTilt           domain.AutoTiltConfig   `json:"autoTilt"`
	PriceMarkerMinZoom float64                 `json:"priceMarkerMinZoom"`
}

type SessionResponse struct {
	ID          string                    `json:"id"`
	CreatedAt   time.Time                 `json:"createdAt"`
	Map         usecase.MapSnapshot       `json:"map"`
	Selection   domain.SelectionState     `json:"selection"`
	Listings    usecase.BrowserState      `json:"listings"`
	Assistant   usecase.AssistantSnapshot `json:"assistant"`
	Geolocation domain.GeolocationState   `json:"geolocation"`
}

func toSessionResponse(s *usecase.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		Map:         s.View.Snapshot(),
		Selection:   s.Selection.State(),
		Listings:    s.Browser.State(),
		Assistant:   s.Assistant.Snapshot(),
		Geolocation: s.Geolocation.State(),
	}
}

type ClickResponse struct {
	Selection domain.SelectionState `json:"selection"`
	Map       usecase.MapSnapshot   `json:"map"`
}

type ToggleResponse struct {
	Feature domain.MapFeature `json:"feature"`
	Enabled bool              `json:"enabled"`
}

type AssistantOpenResponse struct {
	IsOpen bool `json:"isOpen"`
}

type AIAnalyzeResponse struct {
	Analysis string `json:"analysis"`
}

type AIChatResponse struct {
	Response string `json:"response"`
}
