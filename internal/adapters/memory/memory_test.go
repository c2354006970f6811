package memory

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzton/vantage/internal/constants"
	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
)

var testLogger = contextkeys.LoggerFromContext(context.Background())

func ids(listings []domain.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestListingRepository_DropsUnplaceableAndDuplicates(t *testing.T) {
	seed := append([]domain.Listing{}, constants.MockListings[:2]...)
	seed = append(seed,
		domain.Listing{ID: "bad", Latitude: math.NaN(), Longitude: 0},
		domain.Listing{ID: "far", Latitude: 91, Longitude: 0},
		domain.Listing{ID: "1", Title: "Duplicate", Latitude: 1, Longitude: 1},
	)
	repo := NewListingRepository(seed, 0, testLogger)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(all))

	l, found, err := repo.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Modern Loft in SoHo", l.Title)

	_, found, err = repo.FindByID(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListingRepository_FindAllReturnsCopy(t *testing.T) {
	repo := NewListingRepository(constants.MockListings, 0, testLogger)

	first, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	first[0].Title = "changed"

	second, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Modern Loft in SoHo", second[0].Title)
}

func TestListingRepository_Queries(t *testing.T) {
	repo := NewListingRepository(constants.MockListings, 0, testLogger)
	ctx := context.Background()

	inBounds, err := repo.FindByBounds(ctx, domain.Bounds{North: 40.73, South: 40.715, East: -74.0, West: -74.01})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4"}, ids(inBounds))

	nearby, err := repo.FindNearby(ctx, 40.7233, -74.003, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(nearby))

	minBeds := 2
	result, err := repo.Search(ctx, domain.SearchQuery{Keyword: "LOFT", MinBedrooms: &minBeds})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "8"}, ids(result.Listings))
	assert.Equal(t, 2, result.Total)
	assert.False(t, result.HasMore)

	page, err := repo.Search(ctx, domain.SearchQuery{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5", "6"}, ids(page.Listings))
	assert.Equal(t, 8, page.Total)
	assert.True(t, page.HasMore)
}

func TestListingRepository_LatencyHonorsCancellation(t *testing.T) {
	repo := NewListingRepository(constants.MockListings, time.Hour, testLogger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.Search(ctx, domain.SearchQuery{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"id":"a","title":"T","price":100,"currency":"USD","description":"d",
		"address":"addr","imageUrl":"u","bedrooms":1,"bathrooms":1,"squareFeet":500,"latitude":40.7,"longitude":-74,"propertyType":"condo"}]`), 0o600))
	listings, err := LoadSeedFile(good)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, domain.PropertyCondo, listings[0].PropertyType)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id":"a"}]`), 0o600))
	_, err = LoadSeedFile(bad)
	assert.Error(t, err)

	_, err = LoadSeedFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestTokenStore(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)

	require.NoError(t, store.Set(ctx, "pk.abc"))
	token, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pk.abc", token)

	require.NoError(t, store.Delete(ctx))
	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}
