package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSearchLimit is the page size used when a query does not set one.
const DefaultSearchLimit = 20

// SearchQuery describes a listing filter. Zero values mean "no constraint".
type SearchQuery struct {
	Keyword       string         `json:"keyword,omitempty"`
	MinPrice      *float64       `json:"minPrice,omitempty"`
	MaxPrice      *float64       `json:"maxPrice,omitempty"`
	PropertyTypes []PropertyType `json:"propertyTypes,omitempty"`
	MinBedrooms   *int           `json:"minBedrooms,omitempty"`
	MaxBedrooms   *int           `json:"maxBedrooms,omitempty"`
	Bounds        *Bounds        `json:"bounds,omitempty"`
	Limit         int            `json:"limit,omitempty"`
	Offset        int            `json:"offset,omitempty"`
}

// SearchResult is one page of matches.
type SearchResult struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"hasMore"`
}

// Page returns the effective limit and offset of the query.
func (q SearchQuery) Page() (limit, offset int) {
	limit = q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	offset = q.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// matches applies every filter of the query to one listing.
// folder must come from cases.Fold and is not safe for concurrent use.
func (q SearchQuery) matches(l Listing, folder cases.Caser, keyword string) bool {
	if keyword != "" &&
		!strings.Contains(folder.String(l.Title), keyword) &&
		!strings.Contains(folder.String(l.Description), keyword) &&
		!strings.Contains(folder.String(l.Address), keyword) {
		return false
	}
	if q.MinPrice != nil && l.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && l.Price > *q.MaxPrice {
		return false
	}
	if len(q.PropertyTypes) > 0 && !containsType(q.PropertyTypes, l.PropertyType) {
		return false
	}
	if q.MinBedrooms != nil && l.Bedrooms < *q.MinBedrooms {
		return false
	}
	if q.MaxBedrooms != nil && l.Bedrooms > *q.MaxBedrooms {
		return false
	}
	if q.Bounds != nil && !q.Bounds.Contains(l.Latitude, l.Longitude) {
		return false
	}
	return true
}

// ApplySearch filters listings in load order and cuts out the requested page.
func ApplySearch(listings []Listing, q SearchQuery) SearchResult {
	folder := cases.Fold()
	keyword := folder.String(strings.TrimSpace(q.Keyword))

	matched := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if q.matches(l, folder, keyword) {
			matched = append(matched, l)
		}
	}

	total := len(matched)
	limit, offset := q.Page()
	if offset >= total {
		return SearchResult{Listings: []Listing{}, Total: total, HasMore: false}
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := matched[offset:end]
	return SearchResult{
		Listings: page,
		Total:    total,
		HasMore:  offset+len(page) < total,
	}
}

// FilterByBounds returns the listings inside b, preserving order.
func FilterByBounds(listings []Listing, b Bounds) []Listing {
	out := make([]Listing, 0)
	for _, l := range listings {
		if b.Contains(l.Latitude, l.Longitude) {
			out = append(out, l)
		}
	}
	return out
}

// FilterNearby returns the listings whose Haversine distance from (lat, lng) is <= radiusKm.
func FilterNearby(listings []Listing, lat, lng, radiusKm float64) []Listing {
	out := make([]Listing, 0)
	for _, l := range listings {
		if HaversineKm(lat, lng, l.Latitude, l.Longitude) <= radiusKm {
			out = append(out, l)
		}
	}
	return out
}

func containsType(types []PropertyType, t PropertyType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
