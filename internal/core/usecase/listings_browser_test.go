package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzton/vantage/internal/core/domain"
)

func TestListingsBrowser_FetchAll(t *testing.T) {
	b := NewListingsBrowser(NewListingQueryUseCase(newFakeRepo()))
	assert.NotNil(t, b.State().Listings)

	state, err := b.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Listings, len(testListings))
	assert.Equal(t, len(testListings), state.Total)
	assert.False(t, state.HasMore)
	assert.False(t, state.IsLoading)
}

func TestListingsBrowser_SearchAndLoadMore(t *testing.T) {
	b := NewListingsBrowser(NewListingQueryUseCase(newFakeRepo()))
	ctx := context.Background()

	state, err := b.Search(ctx, domain.SearchQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, listingIDs(state.Listings))
	assert.Equal(t, 5, state.Total)
	assert.True(t, state.HasMore)

	state, err = b.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, listingIDs(state.Listings))
	assert.True(t, state.HasMore)

	state, err = b.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, listingIDs(state.Listings))
	assert.False(t, state.HasMore)

	state, err = b.LoadMore(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Listings, 5, "no-op once everything is loaded")
}

func TestListingsBrowser_SearchKeepsQuery(t *testing.T) {
	b := NewListingsBrowser(NewListingQueryUseCase(newFakeRepo()))

	q := domain.SearchQuery{Keyword: "loft"}
	state, err := b.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5"}, listingIDs(state.Listings))
	assert.Equal(t, q, state.Query)

	state, err = b.ClearSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SearchQuery{}, state.Query)
	assert.Len(t, state.Listings, 5)
}

func TestListingsBrowser_ErrorKeepsPreviousList(t *testing.T) {
	repo := newFakeRepo()
	b := NewListingsBrowser(NewListingQueryUseCase(repo))

	_, err := b.Search(context.Background(), domain.SearchQuery{Limit: 2})
	require.NoError(t, err)

	repo.err = errBackend
	state, err := b.LoadMore(context.Background())
	assert.ErrorIs(t, err, errBackend)
	assert.Len(t, state.Listings, 2)
	assert.True(t, state.HasMore)
	assert.False(t, state.IsLoading)

	state, err = b.Search(context.Background(), domain.SearchQuery{Keyword: "x"})
	assert.ErrorIs(t, err, errBackend)
	assert.False(t, state.IsSearching)
	assert.Len(t, state.Listings, 2)
}

func TestListingsBrowser_Hover(t *testing.T) {
	b := NewListingsBrowser(NewListingQueryUseCase(newFakeRepo()))

	b.Hover("2")
	assert.Equal(t, "2", b.State().HoveredID)
	b.Hover("")
	assert.Empty(t, b.State().HoveredID)
}

func listingIDs(listings []domain.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}
