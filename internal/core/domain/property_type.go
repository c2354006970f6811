package domain

import "fmt"

// PropertyType is the closed set of listing categories.
type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyPenthouse PropertyType = "penthouse"
	PropertyStudio    PropertyType = "studio"
	PropertyCondo     PropertyType = "condo"
	PropertyVilla     PropertyType = "villa"
)

// AllPropertyTypes lists every known type in display order.
var AllPropertyTypes = []PropertyType{
	PropertyApartment,
	PropertyHouse,
	PropertyPenthouse,
	PropertyStudio,
	PropertyCondo,
	PropertyVilla,
}

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyApartment, PropertyHouse, PropertyPenthouse, PropertyStudio, PropertyCondo, PropertyVilla:
		return true
	}
	return false
}

// ParsePropertyType converts a raw string into a PropertyType.
func ParsePropertyType(s string) (PropertyType, error) {
	t := PropertyType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPropertyType, s)
	}
	return t, nil
}

// Vibe returns the short phrase used by the fallback analysis.
func (t PropertyType) Vibe() string {
	switch t {
	case PropertyApartment:
		return "urban living with modern conveniences"
	case PropertyPenthouse:
		return "luxury high-rise living with stunning views"
	case PropertyStudio:
		return "efficient city living for the modern professional"
	case PropertyHouse:
		return "spacious residential comfort"
	case PropertyCondo:
		return "contemporary living with premium amenities"
	case PropertyVilla:
		return "luxurious retreat-style accommodation"
	default:
		return "comfortable urban living"
	}
}
