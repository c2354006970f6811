package domain

import (
	"strconv"
)

// ClusterStyle is the visual encoding of one cluster marker.
type ClusterStyle struct {
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

// ClusterStep switches to Style once a cluster holds at least MinCount points.
type ClusterStep struct {
	MinCount int          `json:"minCount"`
	Style    ClusterStyle `json:"style"`
}

// ClusterConfig controls how the renderer groups listings.
// Steps must be sorted by MinCount ascending. Point styles unclustered listings.
type ClusterConfig struct {
	MaxZoom   int           `json:"maxZoom"`
	Radius    int           `json:"radius"`
	MinPoints int           `json:"minPoints"`
	Base      ClusterStyle  `json:"base"`
	Steps     []ClusterStep `json:"steps"`
	Point     ClusterStyle  `json:"point"`
}

// StyleFor maps a point count onto radius and color with a step lookup.
func (c ClusterConfig) StyleFor(pointCount int) ClusterStyle {
	style := c.Base
	for _, step := range c.Steps {
		if pointCount < step.MinCount {
			break
		}
		style = step.Style
	}
	return style
}

// CircleColorExpression renders the color steps as a map-style "step" expression.
func (c ClusterConfig) CircleColorExpression() []any {
	expr := []any{"step", []any{"get", "point_count"}, c.Base.Color}
	for _, step := range c.Steps {
		expr = append(expr, step.MinCount, step.Style.Color)
	}
	return expr
}

// CircleRadiusExpression renders the radius steps as a map-style "step" expression.
func (c ClusterConfig) CircleRadiusExpression() []any {
	expr := []any{"step", []any{"get", "point_count"}, c.Base.Radius}
	for _, step := range c.Steps {
		expr = append(expr, step.MinCount, step.Style.Radius)
	}
	return expr
}

// AbbreviateCount formats a point count the way cluster labels show it (1.2k, 15k).
func AbbreviateCount(n int) string {
	switch {
	case n >= 10000:
		return strconv.Itoa(n/1000) + "k"
	case n >= 1000:
		return strconv.FormatFloat(float64(n/100)/10, 'f', -1, 64) + "k"
	default:
		return strconv.Itoa(n)
	}
}

// ClusterFeature is one rendered marker: either a cluster or a single listing.
type ClusterFeature struct {
	ID                    int64        `json:"id,omitempty"`
	IsCluster             bool         `json:"cluster"`
	Center                GeoPoint     `json:"center"`
	PointCount            int          `json:"pointCount"`
	PointCountAbbreviated string       `json:"pointCountAbbreviated"`
	ListingIDs            []string     `json:"listingIds"`
	Style                 ClusterStyle `json:"style"`
}

// PointFeature renders one listing as an unclustered marker.
func PointFeature(l Listing, config ClusterConfig) ClusterFeature {
	return ClusterFeature{
		Center:                l.Point(),
		PointCount:            1,
		PointCountAbbreviated: "1",
		ListingIDs:            []string{l.ID},
		Style:                 config.Point,
	}
}
