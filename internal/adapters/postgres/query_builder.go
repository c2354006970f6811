package postgres

import (
	"fmt"
	"math"
	"strings"

	"github.com/mzton/vantage/internal/core/domain"
)

// kmPerDegreeLat is the length of one degree of latitude on the Haversine sphere.
const kmPerDegreeLat = domain.EarthRadiusKm * math.Pi / 180

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

func (qb *queryBuilder) AddIntFilter(fieldName string, min *int, max *int) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// AddKeywordFilter matches the keyword as a substring of title, description or address.
func (qb *queryBuilder) AddKeywordFilter(keyword string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return
	}
	qb.conditions = append(qb.conditions, fmt.Sprintf(
		"(l.title ILIKE $%[1]d OR l.description ILIKE $%[1]d OR l.address ILIKE $%[1]d)", qb.argId,
	))
	qb.args = append(qb.args, "%"+likeEscaper.Replace(keyword)+"%")
	qb.argId++
}

// AddBoundsFilter keeps rows inside the box, edges included.
func (qb *queryBuilder) AddBoundsFilter(b *domain.Bounds) {
	if b == nil {
		return
	}
	qb.AddFloatFilter("l.latitude", &b.South, &b.North)
	qb.AddFloatFilter("l.longitude", &b.West, &b.East)
}

// AddRadiusPrefilter narrows rows to the box around a circle. Exact distance is checked afterwards.
func (qb *queryBuilder) AddRadiusPrefilter(lat, lng, radiusKm float64) {
	dLat := radiusKm / kmPerDegreeLat
	south, north := lat-dLat, lat+dLat
	qb.AddFloatFilter("l.latitude", &south, &north)

	cos := math.Cos(lat * math.Pi / 180)
	if cos < 1e-6 {
		return
	}
	dLng := dLat / cos
	if dLng >= 180 {
		return
	}
	west, east := lng-dLng, lng+dLng
	// The box crosses the antimeridian; latitude alone is the prefilter there.
	if west < -180 || east > 180 {
		return
	}
	qb.AddFloatFilter("l.longitude", &west, &east)
}

func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// applySearch turns a search query into a WHERE clause and its arguments.
func applySearch(q domain.SearchQuery) (string, []interface{}) {
	qb := newQueryBuilder()

	qb.AddKeywordFilter(q.Keyword)
	qb.AddFloatFilter("l.price", q.MinPrice, q.MaxPrice)

	if len(q.PropertyTypes) > 0 {
		types := make([]string, 0, len(q.PropertyTypes))
		for _, t := range q.PropertyTypes {
			types = append(types, string(t))
		}
		qb.addCondition("%s = ANY($%d)", "l.property_type", types)
	}

	qb.AddIntFilter("l.bedrooms", q.MinBedrooms, q.MaxBedrooms)
	qb.AddBoundsFilter(q.Bounds)

	return qb.build()
}
