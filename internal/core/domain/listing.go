package domain

import (
	"fmt"
	"math"
)

// Listing is an immutable property record shown on the map.
type Listing struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	Description  string       `json:"description"`
	Address      string       `json:"address"`
	ImageURL     string       `json:"imageUrl"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    float64      `json:"bathrooms"`
	SquareFeet   float64      `json:"squareFeet"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	PropertyType PropertyType `json:"propertyType"`
}

// Point returns the listing position.
func (l Listing) Point() GeoPoint {
	return GeoPoint{Latitude: l.Latitude, Longitude: l.Longitude}
}

// ValidateCoordinates reports whether the listing can be placed on the map.
// Listings failing this check are dropped at load time.
func (l Listing) ValidateCoordinates() error {
	if !ValidCoordinates(l.Latitude, l.Longitude) {
		return fmt.Errorf("%w: listing %s at (%v, %v)", ErrInvalidCoordinates, l.ID, l.Latitude, l.Longitude)
	}
	return nil
}

// ValidCoordinates checks that lat/lng are finite and inside WGS84 ranges.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// FilterPlaceable splits listings into those with valid coordinates and the rejected rest.
// Order of the kept listings is preserved.
func FilterPlaceable(listings []Listing) (kept []Listing, dropped []Listing) {
	kept = make([]Listing, 0, len(listings))
	for _, l := range listings {
		if l.ValidateCoordinates() != nil {
			dropped = append(dropped, l)
			continue
		}
		kept = append(kept, l)
	}
	return kept, dropped
}
