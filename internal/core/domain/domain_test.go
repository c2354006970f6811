package domain

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

var fixtures = []Listing{
	{ID: "a", Title: "Modern Loft", Description: "Industrial space", Address: "1 Mercer St, SoHo, NY", Price: 450, Bedrooms: 2, Latitude: 40.72, Longitude: -74.00, PropertyType: PropertyApartment},
	{ID: "b", Title: "Sky Penthouse", Description: "Views of the LOFT district", Address: "2 Leonard St, Tribeca, NY", Price: 1200, Bedrooms: 3, Latitude: 40.71, Longitude: -74.01, PropertyType: PropertyPenthouse},
	{ID: "c", Title: "Tiny Studio", Description: "Quiet street", Address: "3 Perry St", Price: 250, Bedrooms: 1, Latitude: 40.74, Longitude: -74.00, PropertyType: PropertyStudio},
	{ID: "d", Title: "Brooklyn House", Description: "Garden", Address: "4 Water St, Brooklyn, NY", Price: 600, Bedrooms: 2, Latitude: 40.70, Longitude: -73.99, PropertyType: PropertyHouse},
}

func ids(listings []Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(40.7, -74, 40.7, -74), 1e-9)
	assert.InDelta(t, 111.195, HaversineKm(0, 0, 0, 1), 0.001)
	assert.InDelta(t, math.Pi*EarthRadiusKm, HaversineKm(0, 0, 0, 180), 1e-6)
	assert.InDelta(t, HaversineKm(40.7, -74, 51.5, -0.12), HaversineKm(51.5, -0.12, 40.7, -74), 1e-9)
}

func TestBoundsContainsEdges(t *testing.T) {
	b := Bounds{North: 41, South: 40, East: -73, West: -75}

	assert.True(t, b.Contains(40.5, -74))
	assert.True(t, b.Contains(41, -73), "corners are inside")
	assert.True(t, b.Contains(40, -75))
	assert.False(t, b.Contains(41.0001, -74))
	assert.False(t, b.Contains(40.5, -72.9))
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     bool
	}{
		{40.7, -74, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lng), "(%v, %v)", tt.lat, tt.lng)
	}
}

func TestFilterPlaceable(t *testing.T) {
	in := []Listing{{ID: "ok1", Latitude: 1, Longitude: 1}, {ID: "bad", Latitude: 200}, {ID: "ok2"}}

	kept, dropped := FilterPlaceable(in)
	assert.Equal(t, []string{"ok1", "ok2"}, ids(kept))
	assert.Equal(t, []string{"bad"}, ids(dropped))
}

func TestApplySearch(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  []string
	}{
		{"empty query returns all in order", SearchQuery{}, []string{"a", "b", "c", "d"}},
		{"keyword is case-insensitive over title description and address", SearchQuery{Keyword: " loft "}, []string{"a", "b"}},
		{"keyword in address", SearchQuery{Keyword: "brooklyn"}, []string{"d"}},
		{"price range is inclusive", SearchQuery{MinPrice: floatPtr(450), MaxPrice: floatPtr(600)}, []string{"a", "d"}},
		{"property types", SearchQuery{PropertyTypes: []PropertyType{PropertyStudio, PropertyHouse}}, []string{"c", "d"}},
		{"bedroom range", SearchQuery{MinBedrooms: intPtr(2), MaxBedrooms: intPtr(2)}, []string{"a", "d"}},
		{"bounds", SearchQuery{Bounds: &Bounds{North: 40.725, South: 40.705, East: -73.995, West: -74.02}}, []string{"a", "b"}},
		{"filters combine", SearchQuery{Keyword: "loft", MaxPrice: floatPtr(500)}, []string{"a"}},
		{"no match", SearchQuery{Keyword: "castle"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ApplySearch(fixtures, tt.query)
			assert.Equal(t, tt.want, ids(res.Listings))
			assert.Equal(t, len(tt.want), res.Total)
			assert.False(t, res.HasMore)
		})
	}
}

func TestApplySearch_Paging(t *testing.T) {
	res := ApplySearch(fixtures, SearchQuery{Limit: 3})
	assert.Equal(t, []string{"a", "b", "c"}, ids(res.Listings))
	assert.Equal(t, 4, res.Total)
	assert.True(t, res.HasMore)

	res = ApplySearch(fixtures, SearchQuery{Limit: 3, Offset: 3})
	assert.Equal(t, []string{"d"}, ids(res.Listings))
	assert.False(t, res.HasMore)

	res = ApplySearch(fixtures, SearchQuery{Limit: 3, Offset: 10})
	assert.Empty(t, res.Listings)
	assert.NotNil(t, res.Listings)
	assert.Equal(t, 4, res.Total)
	assert.False(t, res.HasMore)

	limit, offset := SearchQuery{Offset: -5}.Page()
	assert.Equal(t, DefaultSearchLimit, limit)
	assert.Equal(t, 0, offset)
}

func TestFilterNearby(t *testing.T) {
	assert.Equal(t, []string{"a"}, ids(FilterNearby(fixtures, 40.72, -74.00, 0)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(FilterNearby(fixtures, 40.72, -74.00, 10)))
	assert.Empty(t, FilterNearby(fixtures, 0, 0, 100))
}

func TestParsePropertyType(t *testing.T) {
	for _, pt := range AllPropertyTypes {
		got, err := ParsePropertyType(string(pt))
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
	_, err := ParsePropertyType("castle")
	assert.ErrorIs(t, err, ErrUnknownPropertyType)
}

func TestFallbackAnalysis(t *testing.T) {
	l := Listing{
		Title:        "Modern Loft in SoHo",
		Price:        450,
		Description:  "A spacious loft.",
		Address:      "123 Mercer St, New York, NY",
		Bedrooms:     2,
		Bathrooms:    2,
		SquareFeet:   1200,
		PropertyType: PropertyApartment,
	}

	want := "**Modern Loft in SoHo** offers urban living with modern conveniences in New York.\n\n" +
		"**The Space**: 2 bedrooms, 2 baths, spanning 1,200 sq ft.\n\n" +
		"**Best For**: Small groups or couples looking for a mid-range stay.\n\n" +
		"**Location Value**: A spacious loft.\n\n" +
		"At **$450/night**, this apartment offers excellent value for its location and amenities."
	assert.Equal(t, want, FallbackAnalysis(l))
	assert.Equal(t, FallbackAnalysis(l), FallbackAnalysis(l))
}

func TestFallbackAnalysis_SingularAndFractions(t *testing.T) {
	got := FallbackAnalysis(Listing{
		Title: "Nook", Price: 250, Address: "88 Perry St",
		Bedrooms: 1, Bathrooms: 1.5, SquareFeet: 450, PropertyType: PropertyStudio,
	})
	assert.Contains(t, got, "1 bedroom, 1.5 baths, spanning 450 sq ft.")
	assert.Contains(t, got, "in a prime location.")
	assert.Contains(t, got, "Solo travelers or couples looking for a budget-friendly stay")
}

func TestGroupedNumber(t *testing.T) {
	tests := map[float64]string{
		450:       "450",
		1200:      "1,200",
		1234.5:    "1,234.5",
		999.25:    "999.25",
		1234.5678: "1,234.568",
		1000000:   "1,000,000",
		0.4:       "0.4",
	}
	for in, want := range tests {
		assert.Equal(t, want, groupedNumber(in), "%v", in)
	}

	got := FallbackAnalysis(Listing{Title: "Half", Address: "1 A St", Bedrooms: 2, Bathrooms: 1, SquareFeet: 1234.5})
	assert.Contains(t, got, "spanning 1,234.5 sq ft.")
}

func TestAnalysisBuckets(t *testing.T) {
	assert.Equal(t, "budget-friendly", PriceCategory(399.99))
	assert.Equal(t, "mid-range", PriceCategory(400))
	assert.Equal(t, "premium", PriceCategory(700))

	assert.Equal(t, "Small groups or couples", TargetAudience(0))
	assert.Equal(t, "Solo travelers or couples", TargetAudience(1))
	assert.Equal(t, "Families or groups", TargetAudience(3))

	assert.Equal(t, "a prime location", Neighborhood("no comma"))
	assert.Equal(t, "a prime location", Neighborhood("1 Main St, , NY"))
	assert.Equal(t, "Brooklyn", Neighborhood("50 Water St, Brooklyn, NY"))
}

func TestClusterConfig(t *testing.T) {
	cfg := ClusterConfig{
		Base: ClusterStyle{Radius: 20, Color: "#6366f1"},
		Steps: []ClusterStep{
			{MinCount: 5, Style: ClusterStyle{Radius: 30, Color: "#4f46e5"}},
			{MinCount: 10, Style: ClusterStyle{Radius: 40, Color: "#4338ca"}},
		},
		Point: ClusterStyle{Radius: 8, Color: "#6366f1"},
	}

	assert.Equal(t, cfg.Base, cfg.StyleFor(4))
	assert.Equal(t, cfg.Steps[0].Style, cfg.StyleFor(5))
	assert.Equal(t, cfg.Steps[1].Style, cfg.StyleFor(120))

	assert.Equal(t, []any{"step", []any{"get", "point_count"}, "#6366f1", 5, "#4f46e5", 10, "#4338ca"}, cfg.CircleColorExpression())
	assert.Equal(t, []any{"step", []any{"get", "point_count"}, 20.0, 5, 30.0, 10, 40.0}, cfg.CircleRadiusExpression())

	point := PointFeature(fixtures[0], cfg)
	assert.False(t, point.IsCluster)
	assert.Equal(t, cfg.Point, point.Style)
	assert.Equal(t, []string{"a"}, point.ListingIDs)
}

func TestAbbreviateCount(t *testing.T) {
	assert.Equal(t, "999", AbbreviateCount(999))
	assert.Equal(t, "1k", AbbreviateCount(1000))
	assert.Equal(t, "1.2k", AbbreviateCount(1234))
	assert.Equal(t, "15k", AbbreviateCount(15999))
}

func TestAutoTilt(t *testing.T) {
	c := AutoTiltConfig{ZoomThreshold: 14.5, PitchMultiplier: 20, MaxPitch: 60}

	assert.Equal(t, 0.0, c.PitchForZoom(10))
	assert.Equal(t, 0.0, c.PitchForZoom(14.5))
	assert.InDelta(t, 10.0, c.PitchForZoom(15), 1e-9)
	assert.Equal(t, 60.0, c.PitchForZoom(22))

	assert.Equal(t, 0.0, c.ClampPitch(-5))
	assert.Equal(t, 0.0, c.ClampPitch(math.NaN()))
	assert.Equal(t, 60.0, c.ClampPitch(85))
	assert.Equal(t, 30.0, c.ClampPitch(30))
}

func TestNormalizeBearing(t *testing.T) {
	assert.Equal(t, -170.0, NormalizeBearing(190))
	assert.Equal(t, 180.0, NormalizeBearing(-180))
	assert.Equal(t, 180.0, NormalizeBearing(540))
	assert.Equal(t, -20.0, NormalizeBearing(-20))
	assert.Equal(t, 0.0, NormalizeBearing(math.Inf(-1)))
}

func TestParseMapFeature(t *testing.T) {
	f, err := ParseMapFeature("terrain")
	require.NoError(t, err)
	assert.Equal(t, FeatureTerrain, f)

	_, err = ParseMapFeature("fog")
	assert.ErrorIs(t, err, ErrUnknownFeature)
}

func TestListingsToGeoJSON(t *testing.T) {
	fc := ListingsToGeoJSON(fixtures[:2])
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, orb.Point{-74.00, 40.72}, f.Geometry)
	assert.Equal(t, "a", f.Properties["id"])
	assert.Equal(t, "apartment", f.Properties["propertyType"])
}

func TestCameraCommands(t *testing.T) {
	fly := NewFlyTo(GeoPoint{Latitude: 1, Longitude: 2}, 16, -20, 45, 1500*time.Millisecond)
	assert.Equal(t, CameraFlyTo, fly.Kind)
	require.NotNil(t, fly.Pitch)
	assert.Equal(t, 45.0, *fly.Pitch)
	assert.Equal(t, int64(1500), fly.DurationMs)

	ease := NewEaseTo(GeoPoint{Latitude: 1, Longitude: 2}, 12, 500*time.Millisecond)
	assert.Equal(t, CameraEaseTo, ease.Kind)
	assert.Nil(t, ease.Pitch)
	assert.Nil(t, ease.Bearing)
}
