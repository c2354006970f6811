package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

var testListings = []domain.Listing{
	{ID: "1", Title: "Modern Loft in SoHo", Price: 450, Address: "123 Mercer St, New York, NY", Bedrooms: 2, Bathrooms: 2, SquareFeet: 1200, Latitude: 40.7233, Longitude: -74.0030, PropertyType: domain.PropertyApartment},
	{ID: "2", Title: "Luxury Penthouse", Price: 1200, Address: "15 Central Park W, New York, NY", Bedrooms: 3, Bathrooms: 3, SquareFeet: 2500, Latitude: 40.7694, Longitude: -73.9815, PropertyType: domain.PropertyPenthouse},
	{ID: "3", Title: "Cozy Studio", Price: 250, Address: "88 Perry St, New York, NY", Bedrooms: 1, Bathrooms: 1, SquareFeet: 450, Latitude: 40.7357, Longitude: -74.0036, PropertyType: domain.PropertyStudio},
	{ID: "4", Title: "Tribeca Family Home", Price: 850, Address: "40 Harrison St, New York, NY", Bedrooms: 3, Bathrooms: 2.5, SquareFeet: 1800, Latitude: 40.7186, Longitude: -74.0101, PropertyType: domain.PropertyHouse},
	{ID: "5", Title: "DUMBO Loft", Price: 550, Address: "50 Water St, Brooklyn, NY", Bedrooms: 2, Bathrooms: 1, SquareFeet: 1100, Latitude: 40.7033, Longitude: -73.9881, PropertyType: domain.PropertyCondo},
}

type fakeRepo struct {
	listings []domain.Listing
	err      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{listings: testListings}
}

func (r *fakeRepo) FindAll(context.Context) ([]domain.Listing, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Listing, len(r.listings))
	copy(out, r.listings)
	return out, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (domain.Listing, bool, error) {
	if r.err != nil {
		return domain.Listing{}, false, r.err
	}
	for _, l := range r.listings {
		if l.ID == id {
			return l, true, nil
		}
	}
	return domain.Listing{}, false, nil
}

func (r *fakeRepo) FindByBounds(_ context.Context, b domain.Bounds) ([]domain.Listing, error) {
	if r.err != nil {
		return nil, r.err
	}
	return domain.FilterByBounds(r.listings, b), nil
}

func (r *fakeRepo) FindNearby(_ context.Context, lat, lng, radiusKm float64) ([]domain.Listing, error) {
	if r.err != nil {
		return nil, r.err
	}
	return domain.FilterNearby(r.listings, lat, lng, radiusKm), nil
}

func (r *fakeRepo) Search(_ context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	if r.err != nil {
		return domain.SearchResult{}, r.err
	}
	return domain.ApplySearch(r.listings, q), nil
}

// fakeGenerator answers from the configured funcs. When gate is set, every
// call blocks until the gate is closed or ctx ends.
type fakeGenerator struct {
	analyze func(domain.Listing) (string, error)
	chat    func(string, domain.ChatContext) (string, error)
	gate    chan struct{}
	started chan struct{}
}

func (g *fakeGenerator) wait(ctx context.Context) error {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.gate == nil {
		return nil
	}
	select {
	case <-g.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *fakeGenerator) AnalyzeProperty(ctx context.Context, l domain.Listing) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	if g.analyze == nil {
		return "analysis of " + l.Title, nil
	}
	return g.analyze(l)
}

func (g *fakeGenerator) Chat(ctx context.Context, message string, chatCtx domain.ChatContext) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	if g.chat == nil {
		return "echo: " + message, nil
	}
	return g.chat(message, chatCtx)
}

type fakeRenderer struct {
	mu       sync.Mutex
	commands []domain.CameraCommand
	err      error
}

func (r *fakeRenderer) record(cmd domain.CameraCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return r.err
}

func (r *fakeRenderer) FlyTo(_ context.Context, _ string, cmd domain.CameraCommand) error {
	return r.record(cmd)
}

func (r *fakeRenderer) EaseTo(_ context.Context, _ string, cmd domain.CameraCommand) error {
	return r.record(cmd)
}

func (r *fakeRenderer) Commands() []domain.CameraCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CameraCommand, len(r.commands))
	copy(out, r.commands)
	return out
}

type fakeClusters struct {
	zoom     map[int64]float64
	center   map[int64]domain.GeoPoint
	features []domain.ClusterFeature
}

func (c *fakeClusters) Clusters(context.Context, float64, *domain.Bounds) ([]domain.ClusterFeature, error) {
	return c.features, nil
}

func (c *fakeClusters) ExpansionZoom(_ context.Context, id int64) (float64, error) {
	z, ok := c.zoom[id]
	if !ok {
		return 0, domain.ErrClusterNotFound
	}
	return z, nil
}

func (c *fakeClusters) ClusterCenter(_ context.Context, id int64) (domain.GeoPoint, error) {
	p, ok := c.center[id]
	if !ok {
		return domain.GeoPoint{}, domain.ErrClusterNotFound
	}
	return p, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.SessionEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event domain.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) Types() []domain.SessionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.SessionEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeMetrics struct {
	mu      sync.Mutex
	replies []string
}

func (m *fakeMetrics) AssistantReply(kind string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, kind+":"+outcome)
}

func (m *fakeMetrics) Replies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replies...)
}

type fakeTokenStore struct {
	token string
	err   error
}

func (s *fakeTokenStore) Get(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.token == "" {
		return "", domain.ErrTokenNotFound
	}
	return s.token, nil
}

func (s *fakeTokenStore) Set(_ context.Context, token string) error {
	if s.err != nil {
		return s.err
	}
	s.token = token
	return nil
}

func (s *fakeTokenStore) Delete(context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.token = ""
	return nil
}

var errBackend = errors.New("backend unavailable")

var (
	_ port.ListingRepositoryPort     = (*fakeRepo)(nil)
	_ port.TextGeneratorPort         = (*fakeGenerator)(nil)
	_ port.MapRendererPort           = (*fakeRenderer)(nil)
	_ port.ClusterIndexPort          = (*fakeClusters)(nil)
	_ port.SessionEventPublisherPort = (*fakePublisher)(nil)
	_ port.MetricsPort               = (*fakeMetrics)(nil)
	_ port.TokenStorePort            = (*fakeTokenStore)(nil)
)
