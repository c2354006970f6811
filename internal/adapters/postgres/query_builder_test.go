package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzton/vantage/internal/core/domain"
)

func TestApplySearch_Empty(t *testing.T) {
	where, args := applySearch(domain.SearchQuery{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestApplySearch_AllFilters(t *testing.T) {
	minPrice, maxPrice := 200.0, 900.0
	minBeds := 2
	q := domain.SearchQuery{
		Keyword:       " 50%_off ",
		MinPrice:      &minPrice,
		MaxPrice:      &maxPrice,
		PropertyTypes: []domain.PropertyType{domain.PropertyStudio, domain.PropertyCondo},
		MinBedrooms:   &minBeds,
		Bounds:        &domain.Bounds{North: 41, South: 40, East: -73, West: -75},
	}

	where, args := applySearch(q)

	assert.Equal(t, "WHERE (l.title ILIKE $1 OR l.description ILIKE $1 OR l.address ILIKE $1)"+
		" AND l.price >= $2 AND l.price <= $3"+
		" AND l.property_type = ANY($4)"+
		" AND l.bedrooms >= $5"+
		" AND l.latitude >= $6 AND l.latitude <= $7"+
		" AND l.longitude >= $8 AND l.longitude <= $9", where)
	require.Len(t, args, 9)
	assert.Equal(t, `%50\%\_off%`, args[0])
	assert.Equal(t, []string{"studio", "condo"}, args[3])
	assert.Equal(t, 2, args[4])
	assert.Equal(t, 40.0, args[5])
	assert.Equal(t, -73.0, args[8])
}

func TestAddRadiusPrefilter(t *testing.T) {
	qb := newQueryBuilder()
	qb.AddRadiusPrefilter(40.7, -74.0, 5)
	where, args := qb.build()

	assert.Equal(t, "WHERE l.latitude >= $1 AND l.latitude <= $2 AND l.longitude >= $3 AND l.longitude <= $4", where)
	require.Len(t, args, 4)
	south, north := args[0].(float64), args[1].(float64)
	west, east := args[2].(float64), args[3].(float64)
	assert.InDelta(t, 40.7-5/kmPerDegreeLat, south, 1e-9)
	assert.InDelta(t, 40.7+5/kmPerDegreeLat, north, 1e-9)
	assert.Less(t, west, -74.0-5/kmPerDegreeLat)
	assert.Greater(t, east, -74.0+5/kmPerDegreeLat)

	// Every point within the radius lies inside the prefilter box.
	for _, p := range []domain.GeoPoint{{Latitude: north - 1e-6, Longitude: -74}, {Latitude: 40.7, Longitude: east - 1e-6}} {
		assert.LessOrEqual(t, domain.HaversineKm(40.7, -74, p.Latitude, p.Longitude), 5.0+1e-3)
	}
}

func TestAddRadiusPrefilter_AntimeridianSkipsLongitude(t *testing.T) {
	qb := newQueryBuilder()
	qb.AddRadiusPrefilter(0, 179.99, 50)
	where, args := qb.build()

	assert.Equal(t, "WHERE l.latitude >= $1 AND l.latitude <= $2", where)
	assert.Len(t, args, 2)
}
