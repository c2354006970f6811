package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ListingsToGeoJSON projects listings onto a point FeatureCollection consumed by the map source.
// Coordinates are [longitude, latitude].
func ListingsToGeoJSON(listings []Listing) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range listings {
		f := geojson.NewFeature(orb.Point{l.Longitude, l.Latitude})
		f.Properties = geojson.Properties{
			"id":           l.ID,
			"title":        l.Title,
			"price":        l.Price,
			"propertyType": string(l.PropertyType),
			"bedrooms":     l.Bedrooms,
			"bathrooms":    l.Bathrooms,
		}
		fc.Append(f)
	}
	return fc
}
