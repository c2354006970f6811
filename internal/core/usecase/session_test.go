package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzton/vantage/internal/core/domain"
)

func newTestRegistry(gen *fakeGenerator) *SessionRegistry {
	return NewSessionRegistry(SessionDeps{
		Listings:  NewListingQueryUseCase(newFakeRepo()),
		Generator: gen,
		Clusters:  &fakeClusters{},
		Renderer:  &fakeRenderer{},
		Events:    &fakePublisher{},
		Metrics:   &fakeMetrics{},
		View:      DefaultViewSettings(),
	})
}

func TestSessionRegistry_Lifecycle(t *testing.T) {
	r := newTestRegistry(&fakeGenerator{})
	ctx := context.Background()

	a := r.Create(ctx)
	b := r.Create(ctx)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Count())

	got, err := r.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, r.Delete(ctx, a.ID))
	_, err = r.Get(a.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, r.Delete(ctx, a.ID), domain.ErrSessionNotFound)
	assert.Equal(t, 1, r.Count())
}

func TestSessionRegistry_SessionsAreIsolated(t *testing.T) {
	r := newTestRegistry(&fakeGenerator{})
	ctx := context.Background()
	a := r.Create(ctx)
	b := r.Create(ctx)

	require.NoError(t, a.View.SetStyle("dark"))
	_, err := a.Assistant.SendMessage(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, "light", b.View.Style())
	assert.Len(t, b.Assistant.Messages(), 1)
}

func TestSessionRegistry_DeleteCancelsPendingAnalysis(t *testing.T) {
	gen := &fakeGenerator{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	r := newTestRegistry(gen)
	ctx := context.Background()
	s := r.Create(ctx)

	_, err := s.Selection.SelectListing(ctx, "1")
	require.NoError(t, err)
	<-gen.started
	task := s.Selection.PendingAnalysis()
	require.NotNil(t, task)

	require.NoError(t, r.Delete(ctx, s.ID))
	_, err = task.Result()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, s.Assistant.Messages(), 1)
}

func TestSession_SubmitMapTokenClearsError(t *testing.T) {
	r := newTestRegistry(&fakeGenerator{})
	s := r.Create(context.Background())
	creds := NewMapCredentialsUseCase(&fakeTokenStore{}, "", "")

	s.View.SetError(ptr("Invalid map token"))
	assert.ErrorIs(t, s.SubmitMapToken(context.Background(), creds, ""), domain.ErrEmptyToken)
	assert.True(t, s.View.MapError().HasError)

	require.NoError(t, s.SubmitMapToken(context.Background(), creds, "pk.new"))
	assert.False(t, s.View.MapError().HasError)
}

func TestGeolocationTracker(t *testing.T) {
	assistant := NewAssistantSession(&fakeGenerator{}, newFakeRepo(), nil)
	tr := NewGeolocationTracker(assistant)

	state := tr.Request()
	assert.True(t, state.IsLoading)

	state, err := tr.Report(40.73, -73.99, 12)
	require.NoError(t, err)
	require.NotNil(t, state.Latitude)
	assert.Equal(t, 40.73, *state.Latitude)
	assert.Equal(t, 12.0, *state.Accuracy)
	assert.False(t, state.IsLoading)
	assert.Equal(t, &domain.GeoPoint{Latitude: 40.73, Longitude: -73.99}, assistant.Snapshot().Context.UserLocation)

	_, err = tr.Report(math.NaN(), 0, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)
	assert.Equal(t, 40.73, *tr.State().Latitude, "invalid fix keeps the previous one")

	state = tr.Fail(domain.GeoPermissionDenied)
	assert.Equal(t, "Location permission denied", state.Error)
	assert.NotNil(t, state.Latitude)

	state = tr.Request()
	assert.Empty(t, state.Error)
}

func TestGeolocationTracker_NegativeAccuracy(t *testing.T) {
	tr := NewGeolocationTracker(nil)

	state, err := tr.Report(1, 2, -4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *state.Accuracy)
}
