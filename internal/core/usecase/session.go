package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
	"github.com/mzton/vantage/internal/core/port/usecases_port"
)

// Session groups the per-user state of one open map.
type Session struct {
	ID        string
	CreatedAt time.Time

	View        *ViewStateController
	Browser     *ListingsBrowser
	Selection   *SelectionCoordinator
	Assistant   *AssistantSession
	Geolocation *GeolocationTracker
}

// SubmitMapToken stores a new credential and clears the session's map error banner.
func (s *Session) SubmitMapToken(ctx context.Context, creds usecases_port.MapCredentialsUseCase, token string) error {
	if err := creds.Submit(ctx, token); err != nil {
		return err
	}
	s.View.ClearError()
	return nil
}

// SessionDeps are the shared collaborators every session is wired to.
type SessionDeps struct {
	Listings  *ListingQueryUseCase
	Generator port.TextGeneratorPort
	Clusters  port.ClusterIndexPort
	Renderer  port.MapRendererPort
	Events    port.SessionEventPublisherPort
	Metrics   port.MetricsPort
	View      ViewSettings
}

// SessionRegistry owns all live sessions. There is no cross-session state.
type SessionRegistry struct {
	mu       sync.RWMutex
	deps     SessionDeps
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionRegistry(deps SessionDeps) *SessionRegistry {
	return &SessionRegistry{
		deps:     deps,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (r *SessionRegistry) Create(ctx context.Context) *Session {
	id := uuid.NewString()

	view := NewViewStateController(r.deps.View)
	assistant := NewAssistantSession(r.deps.Generator, r.deps.Listings, r.deps.Metrics)
	session := &Session{
		ID:          id,
		CreatedAt:   r.now().UTC(),
		View:        view,
		Browser:     NewListingsBrowser(r.deps.Listings),
		Assistant:   assistant,
		Geolocation: NewGeolocationTracker(assistant),
		Selection: NewSelectionCoordinator(
			id, view, assistant, r.deps.Listings, r.deps.Clusters, r.deps.Renderer, r.deps.Events,
		),
	}

	r.mu.Lock()
	r.sessions[id] = session
	total := len(r.sessions)
	r.mu.Unlock()

	contextkeys.LoggerFromContext(ctx).Info("Session created", port.Fields{
		"session_id":     id,
		"total_sessions": total,
	})
	return session
}

func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete drops a session and cancels its pending analysis.
func (r *SessionRegistry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if task := s.Selection.PendingAnalysis(); task != nil {
		task.Cancel()
	}
	contextkeys.LoggerFromContext(ctx).Info("Session deleted", port.Fields{"session_id": id})
	return nil
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
