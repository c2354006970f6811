package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mzton/vantage/internal/constants"
	"github.com/mzton/vantage/internal/core/domain"
)

// ListingStoreSuite checks the store contract against the seeded NYC listings.
type ListingStoreSuite struct {
	suite.Suite
	ctx  context.Context
	repo *ListingRepository
	all  []domain.Listing
}

func (s *ListingStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = NewListingRepository(constants.MockListings, 0, testLogger)

	all, err := s.repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.all = all
}

func (s *ListingStoreSuite) TestFindByIDRoundTrips() {
	for _, l := range s.all {
		got, found, err := s.repo.FindByID(s.ctx, l.ID)
		s.Require().NoError(err)
		s.True(found)
		s.Equal(l, got)
	}
}

func (s *ListingStoreSuite) TestFindByBoundsIsExactSubset() {
	boxes := []domain.Bounds{
		{North: 40.73, South: 40.70, East: -73.98, West: -74.02},
		{North: 40.80, South: 40.60, East: -73.90, West: -74.10},
		{North: 40.7233, South: 40.7233, East: -74.0030, West: -74.0030},
		{North: 1, South: 0, East: 1, West: 0},
	}

	for _, b := range boxes {
		got, err := s.repo.FindByBounds(s.ctx, b)
		s.Require().NoError(err)

		var want []string
		for _, l := range s.all {
			if l.Latitude >= b.South && l.Latitude <= b.North && l.Longitude >= b.West && l.Longitude <= b.East {
				want = append(want, l.ID)
			}
		}
		s.ElementsMatch(want, ids(got), "bounds %+v", b)
	}
}

func (s *ListingStoreSuite) TestFindNearbyIsExactSubset() {
	center := s.all[0]
	for _, r := range []float64{0, 0.5, 1, 2, 5} {
		got, err := s.repo.FindNearby(s.ctx, center.Latitude, center.Longitude, r)
		s.Require().NoError(err)

		var want []string
		for _, l := range s.all {
			if domain.HaversineKm(center.Latitude, center.Longitude, l.Latitude, l.Longitude) <= r {
				want = append(want, l.ID)
			}
		}
		s.Equal(want, ids(got), "radius %v", r)
	}
}

func (s *ListingStoreSuite) TestEmptySearchMatchesFindAll() {
	res, err := s.repo.Search(s.ctx, domain.SearchQuery{})
	s.Require().NoError(err)

	limit := min(domain.DefaultSearchLimit, len(s.all))
	s.Equal(s.all[:limit], res.Listings)
	s.Equal(len(s.all), res.Total)
	s.Equal(len(s.all) > domain.DefaultSearchLimit, res.HasMore)
}

func (s *ListingStoreSuite) TestFallbackScenarios() {
	studio, found, err := s.repo.FindByID(s.ctx, "3")
	s.Require().NoError(err)
	s.Require().True(found)
	analysis := domain.FallbackAnalysis(studio)
	s.Contains(analysis, "budget-friendly")
	s.Contains(analysis, "Solo travelers or couples")

	penthouse, found, err := s.repo.FindByID(s.ctx, "2")
	s.Require().NoError(err)
	s.Require().True(found)
	analysis = domain.FallbackAnalysis(penthouse)
	s.Contains(analysis, "premium")
	s.Contains(analysis, "Families or groups")
}

func TestListingStoreSuite(t *testing.T) {
	suite.Run(t, new(ListingStoreSuite))
}
