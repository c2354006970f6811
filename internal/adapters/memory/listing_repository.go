package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/contracts"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// ListingRepository serves listings from memory in load order.
// An optional latency simulates a remote source and honors cancellation.
type ListingRepository struct {
	mu       sync.RWMutex
	listings []domain.Listing
	byID     map[string]int
	latency  time.Duration
}

// NewListingRepository drops listings with unusable coordinates and logs each of them.
func NewListingRepository(listings []domain.Listing, latency time.Duration, logger port.LoggerPort) *ListingRepository {
	repo := &ListingRepository{latency: latency}
	repo.Load(listings, logger)
	return repo
}

// LoadSeedFile reads a JSON array of listings validated against the seed contract.
func LoadSeedFile(path string) ([]domain.Listing, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	if err := contracts.ValidateSeed(body); err != nil {
		return nil, fmt.Errorf("seed file %s is invalid: %w", path, err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}
	return listings, nil
}

// Load replaces the stored listings.
func (r *ListingRepository) Load(listings []domain.Listing, logger port.LoggerPort) {
	kept, dropped := domain.FilterPlaceable(listings)
	for _, l := range dropped {
		logger.Warn("Listing has invalid coordinates, skipping", port.Fields{
			"listing_id": l.ID,
			"latitude":   l.Latitude,
			"longitude":  l.Longitude,
		})
	}

	byID := make(map[string]int, len(kept))
	deduped := make([]domain.Listing, 0, len(kept))
	for _, l := range kept {
		if _, exists := byID[l.ID]; exists {
			logger.Warn("Duplicate listing id, keeping the first", port.Fields{"listing_id": l.ID})
			continue
		}
		byID[l.ID] = len(deduped)
		deduped = append(deduped, l)
	}

	r.mu.Lock()
	r.listings = deduped
	r.byID = byID
	r.mu.Unlock()
}

func (r *ListingRepository) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *ListingRepository) snapshot() []domain.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Listing, len(r.listings))
	copy(out, r.listings)
	return out
}

func (r *ListingRepository) FindAll(ctx context.Context) ([]domain.Listing, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.snapshot(), nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (domain.Listing, bool, error) {
	if err := r.wait(ctx); err != nil {
		return domain.Listing{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.Listing{}, false, nil
	}
	return r.listings[i], true, nil
}

func (r *ListingRepository) FindByBounds(ctx context.Context, bounds domain.Bounds) ([]domain.Listing, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return domain.FilterByBounds(r.snapshot(), bounds), nil
}

func (r *ListingRepository) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Listing, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return domain.FilterNearby(r.snapshot(), lat, lng, radiusKm), nil
}

func (r *ListingRepository) Search(ctx context.Context, query domain.SearchQuery) (domain.SearchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "MemoryListingRepository"})
	if err := r.wait(ctx); err != nil {
		logger.Warn("Search interrupted", port.Fields{"error": err.Error()})
		return domain.SearchResult{}, err
	}
	result := domain.ApplySearch(r.snapshot(), query)
	logger.Debug("Search finished", port.Fields{"total": result.Total, "returned": len(result.Listings)})
	return result, nil
}
