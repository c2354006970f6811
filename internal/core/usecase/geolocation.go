package usecase

import (
	"fmt"
	"math"
	"sync"

	"github.com/mzton/vantage/internal/core/domain"
)

// GeolocationTracker stores the user's last position fix and shares it with the assistant.
type GeolocationTracker struct {
	mu        sync.Mutex
	assistant *AssistantSession
	state     domain.GeolocationState
}

func NewGeolocationTracker(assistant *AssistantSession) *GeolocationTracker {
	return &GeolocationTracker{assistant: assistant}
}

// Request marks a position request as in flight.
func (t *GeolocationTracker) Request() domain.GeolocationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.IsLoading = true
	t.state.Error = ""
	return t.state
}

// Report stores a fix. Invalid coordinates are rejected and the state is kept.
func (t *GeolocationTracker) Report(lat, lng, accuracy float64) (domain.GeolocationState, error) {
	if !domain.ValidCoordinates(lat, lng) {
		return t.State(), fmt.Errorf("%w: position (%v, %v)", domain.ErrInvalidCoordinates, lat, lng)
	}
	if math.IsNaN(accuracy) || accuracy < 0 {
		accuracy = 0
	}

	t.mu.Lock()
	t.state = domain.GeolocationState{
		Latitude:  &lat,
		Longitude: &lng,
		Accuracy:  &accuracy,
	}
	state := t.state
	t.mu.Unlock()

	if t.assistant != nil {
		t.assistant.SetContext(domain.ChatContextUpdate{
			UserLocation: &domain.GeoPoint{Latitude: lat, Longitude: lng},
		})
	}
	return state, nil
}

// Fail records a provider failure as a fixed human-readable reason.
func (t *GeolocationTracker) Fail(code domain.GeolocationErrorCode) domain.GeolocationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.IsLoading = false
	t.state.Error = code.Message()
	return t.state
}

func (t *GeolocationTracker) State() domain.GeolocationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
