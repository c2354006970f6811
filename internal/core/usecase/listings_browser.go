package usecase

import (
	"context"
	"sync"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

// BrowserState is the listing panel of one session.
type BrowserState struct {
	Listings    []domain.Listing   `json:"listings"`
	Total       int                `json:"totalResults"`
	HasMore     bool               `json:"hasMore"`
	Query       domain.SearchQuery `json:"searchQuery"`
	HoveredID   string             `json:"hoveredListingId,omitempty"`
	IsLoading   bool               `json:"isLoading"`
	IsSearching bool               `json:"isSearching"`
}

// ListingsBrowser keeps the current result list of a session and pages through it.
type ListingsBrowser struct {
	mu    sync.Mutex
	query *ListingQueryUseCase
	state BrowserState
}

func NewListingsBrowser(query *ListingQueryUseCase) *ListingsBrowser {
	return &ListingsBrowser{
		query: query,
		state: BrowserState{Listings: []domain.Listing{}},
	}
}

// FetchAll loads every listing without pagination.
func (b *ListingsBrowser) FetchAll(ctx context.Context) (BrowserState, error) {
	b.mu.Lock()
	b.state.IsLoading = true
	b.mu.Unlock()

	listings, err := b.query.FindAll(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.IsLoading = false
	if err != nil {
		return b.snapshotLocked(), err
	}
	b.state.Listings = listings
	b.state.Total = len(listings)
	b.state.HasMore = false
	return b.snapshotLocked(), nil
}

// Search replaces the list with the first page of query.
func (b *ListingsBrowser) Search(ctx context.Context, query domain.SearchQuery) (BrowserState, error) {
	b.mu.Lock()
	b.state.IsSearching = true
	b.state.Query = query
	b.mu.Unlock()

	result, err := b.query.Search(ctx, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.IsSearching = false
	if err != nil {
		return b.snapshotLocked(), err
	}
	b.state.Listings = result.Listings
	b.state.Total = result.Total
	b.state.HasMore = result.HasMore
	return b.snapshotLocked(), nil
}

// ClearSearch drops the query and reloads everything.
func (b *ListingsBrowser) ClearSearch(ctx context.Context) (BrowserState, error) {
	b.mu.Lock()
	b.state.Query = domain.SearchQuery{}
	b.mu.Unlock()
	return b.FetchAll(ctx)
}

// LoadMore re-runs the current query from the end of the list and appends the
// page. hasMore comes from the fresh search; nothing pins the result set
// between calls. No-op when there is nothing more or a load is running.
func (b *ListingsBrowser) LoadMore(ctx context.Context) (BrowserState, error) {
	b.mu.Lock()
	if !b.state.HasMore || b.state.IsLoading {
		defer b.mu.Unlock()
		return b.snapshotLocked(), nil
	}
	b.state.IsLoading = true
	query := b.state.Query
	query.Offset = len(b.state.Listings)
	b.mu.Unlock()

	contextkeys.LoggerFromContext(ctx).Debug("Loading more listings", port.Fields{"offset": query.Offset})
	result, err := b.query.Search(ctx, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.IsLoading = false
	if err != nil {
		return b.snapshotLocked(), err
	}
	merged := make([]domain.Listing, 0, len(b.state.Listings)+len(result.Listings))
	merged = append(merged, b.state.Listings...)
	merged = append(merged, result.Listings...)
	b.state.Listings = merged
	b.state.HasMore = result.HasMore
	return b.snapshotLocked(), nil
}

// Hover marks a listing as hovered; an empty id clears it.
func (b *ListingsBrowser) Hover(listingID string) {
	b.mu.Lock()
	b.state.HoveredID = listingID
	b.mu.Unlock()
}

func (b *ListingsBrowser) State() BrowserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *ListingsBrowser) snapshotLocked() BrowserState {
	out := b.state
	out.Listings = make([]domain.Listing, len(b.state.Listings))
	copy(out.Listings, b.state.Listings)
	return out
}
