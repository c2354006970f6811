package constants

import "github.com/mzton/vantage/internal/core/domain"

// MockListings is the default seed of the in-memory listing store.
var MockListings = []domain.Listing{
	{
		ID:           "1",
		Title:        "Modern Loft in SoHo",
		Price:        450,
		Currency:     "USD",
		Description:  "A spacious, industrial-chic loft with high ceilings and huge windows in the heart of SoHo.",
		Address:      "123 Mercer St, New York, NY",
		ImageURL:     "https://picsum.photos/400/300?random=1",
		Bedrooms:     2,
		Bathrooms:    2,
		SquareFeet:   1200,
		Latitude:     40.7233,
		Longitude:    -74.003,
		PropertyType: domain.PropertyApartment,
	},
	{
		ID:           "2",
		Title:        "Luxury Penthouse with View",
		Price:        1200,
		Currency:     "USD",
		Description:  "Stunning penthouse with panoramic views of the skyline. Private terrace and concierge.",
		Address:      "56 Leonard St, New York, NY",
		ImageURL:     "https://picsum.photos/400/300?random=2",
		Bedrooms:     3,
		Bathrooms:    3,
		SquareFeet:   2500,
		Latitude:     40.7175,
		Longitude:    -74.0055,
		PropertyType: domain.PropertyPenthouse,
	},
	{
		ID:           "3",
		Title:        "Cozy West Village Studio",
		Price:        250,
		Currency:     "USD",
		Description:  "Charming studio on a quiet tree-lined street. Perfect for solo travelers.",
		Address:      "88 Perry St, New York, NY",
		ImageURL:     "https://picsum.photos/400/300?random=3",
		Bedrooms:     1,
		Bathrooms:    1,
		SquareFeet:   450,
		Latitude:     40.7359,
		Longitude:    -74.0048,
		PropertyType: domain.PropertyStudio,
	},
	{
		ID:           "4",
		Title:        "Tribeca Family Home",
		Price:        850,
		Currency:     "USD",
		Description:  "Spacious family apartment near parks and top restaurants. Recently renovated.",
		Address:      "100 Hudson St, New York, NY",
		ImageURL:     "https://picsum.photos/400/300?random=4",
		Bedrooms:     3,
		Bathrooms:    2,
		SquareFeet:   1800,
		Latitude:     40.7195,
		Longitude:    -74.009,
		PropertyType: domain.PropertyApartment,
	},
	{
		ID:           "5",
		Title:        "East Village Art Space",
		Price:        300,
		Currency:     "USD",
		Description:  "Eclectic apartment filled with art. Steps from the best nightlife in the city.",
		Address:      "45 E 7th St, New York, NY",
		ImageURL:     "https://picsum.photos/400/300?random=5",
		Bedrooms:     1,
		Bathrooms:    1,
		SquareFeet:   700,
		Latitude:     40.728,
		Longitude:    -73.988,
		PropertyType: domain.PropertyApartment,
	},
	{
		ID:           "6",
		Title:        "Financial District High-Rise",
		Price:        400,
		Currency:     "USD",
		Description:  "Modern amenities, gym, and rooftop access. Close to Wall Street.",
		Address:      "15 Broad St, New York, NY",
		ImageURL:     "https://picsum.photos/400/300?random=6",
		Bedrooms:     1,
		Bathrooms:    1,
		SquareFeet:   800,
		Latitude:     40.7065,
		Longitude:    -74.011,
		PropertyType: domain.PropertyApartment,
	},
	{
		ID:           "7",
		Title:        "Chelsea Brownstone",
		Price:        600,
		Currency:     "USD",
		Description:  "Classic brownstone floor-through with garden access.",
		Address:      "300 W 20th St, New York, NY",
		ImageURL:     "https://picsum.photos/400/300?random=7",
		Bedrooms:     2,
		Bathrooms:    1,
		SquareFeet:   1100,
		Latitude:     40.7445,
		Longitude:    -74.001,
		PropertyType: domain.PropertyHouse,
	},
	{
		ID:           "8",
		Title:        "DUMBO Waterfront Loft",
		Price:        550,
		Currency:     "USD",
		Description:  "Brooklyn loft with views of the Manhattan Bridge.",
		Address:      "50 Water St, Brooklyn, NY",
		ImageURL:     "https://picsum.photos/400/300?random=8",
		Bedrooms:     2,
		Bathrooms:    2,
		SquareFeet:   1400,
		Latitude:     40.7035,
		Longitude:    -73.99,
		PropertyType: domain.PropertyApartment,
	},
}
