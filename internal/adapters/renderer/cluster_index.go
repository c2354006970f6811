package renderer

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/mmcloughlin/geohash"

	"github.com/mzton/vantage/internal/core/domain"
)

const (
	// tileSize is the vector tile extent in pixels at zoom 0.
	tileSize = 512
	// idLevelShift packs level+1 above the cell hash in a cluster id, keeping ids positive and non-zero.
	idLevelShift = 56
	cellMask     = 1<<idLevelShift - 1
	maxCellBits  = 2 * 28
)

// ClusterIndex groups listings into geohash cells sized to the cluster radius at each integer zoom.
type ClusterIndex struct {
	mu       sync.RWMutex
	config   domain.ClusterConfig
	listings []domain.Listing
	hashes   []uint64
}

func NewClusterIndex(config domain.ClusterConfig) *ClusterIndex {
	return &ClusterIndex{config: config}
}

// Load replaces the indexed listings. Order is kept for stable output.
func (ix *ClusterIndex) Load(listings []domain.Listing) {
	hashes := make([]uint64, len(listings))
	for i, l := range listings {
		hashes[i] = geohash.EncodeInt(l.Latitude, l.Longitude)
	}
	copied := make([]domain.Listing, len(listings))
	copy(copied, listings)

	ix.mu.Lock()
	ix.listings = copied
	ix.hashes = hashes
	ix.mu.Unlock()
}

// cellBits is the geohash precision whose cells are about one cluster radius wide at level.
func (ix *ClusterIndex) cellBits(level int) uint {
	radius := float64(ix.config.Radius)
	if radius <= 0 {
		radius = 1
	}
	lngBits := int(math.Floor(float64(level) + math.Log2(tileSize/radius)))
	bits := 2 * lngBits
	if bits < 2 {
		bits = 2
	}
	if bits > maxCellBits {
		bits = maxCellBits
	}
	return uint(bits)
}

// levelOf maps zoom onto an integer level in [0, MaxZoom+1].
func (ix *ClusterIndex) levelOf(zoom float64) int {
	switch {
	case math.IsNaN(zoom) || zoom < 0:
		return 0
	case zoom >= float64(ix.config.MaxZoom+1):
		return ix.config.MaxZoom + 1
	}
	return int(math.Floor(zoom))
}

type cellGroup struct {
	cell    uint64
	members []int
}

// groupLocked buckets listing indexes by cell in first-seen order.
func (ix *ClusterIndex) groupLocked(indexes []int, level int) []cellGroup {
	bits := ix.cellBits(level)
	pos := make(map[uint64]int)
	var groups []cellGroup
	for _, i := range indexes {
		cell := ix.hashes[i] >> (64 - bits)
		g, ok := pos[cell]
		if !ok {
			g = len(groups)
			pos[cell] = g
			groups = append(groups, cellGroup{cell: cell})
		}
		groups[g].members = append(groups[g].members, i)
	}
	return groups
}

func (ix *ClusterIndex) allIndexesLocked() []int {
	out := make([]int, len(ix.listings))
	for i := range out {
		out[i] = i
	}
	return out
}

// Clusters returns the markers at zoom. Above MaxZoom every listing is a
// single point. Features whose center falls outside bounds are dropped.
func (ix *ClusterIndex) Clusters(_ context.Context, zoom float64, bounds *domain.Bounds) ([]domain.ClusterFeature, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	level := ix.levelOf(zoom)
	features := make([]domain.ClusterFeature, 0)

	if level > ix.config.MaxZoom {
		for _, l := range ix.listings {
			if bounds == nil || bounds.Contains(l.Latitude, l.Longitude) {
				features = append(features, domain.PointFeature(l, ix.config))
			}
		}
		return features, nil
	}

	for _, g := range ix.groupLocked(ix.allIndexesLocked(), level) {
		if len(g.members) < ix.config.MinPoints {
			for _, i := range g.members {
				l := ix.listings[i]
				if bounds == nil || bounds.Contains(l.Latitude, l.Longitude) {
					features = append(features, domain.PointFeature(l, ix.config))
				}
			}
			continue
		}

		f := ix.clusterFeatureLocked(level, g)
		if bounds == nil || bounds.Contains(f.Center.Latitude, f.Center.Longitude) {
			features = append(features, f)
		}
	}
	return features, nil
}

func (ix *ClusterIndex) clusterFeatureLocked(level int, g cellGroup) domain.ClusterFeature {
	ids := make([]string, 0, len(g.members))
	for _, i := range g.members {
		ids = append(ids, ix.listings[i].ID)
	}
	n := len(g.members)
	return domain.ClusterFeature{
		ID:                    int64(level+1)<<idLevelShift | int64(g.cell&cellMask),
		IsCluster:             true,
		Center:                ix.centerLocked(g.members),
		PointCount:            n,
		PointCountAbbreviated: domain.AbbreviateCount(n),
		ListingIDs:            ids,
		Style:                 ix.config.StyleFor(n),
	}
}

func (ix *ClusterIndex) centerLocked(members []int) domain.GeoPoint {
	var lat, lng float64
	for _, i := range members {
		lat += ix.listings[i].Latitude
		lng += ix.listings[i].Longitude
	}
	n := float64(len(members))
	return domain.GeoPoint{Latitude: lat / n, Longitude: lng / n}
}

// membersLocked resolves a cluster id back to its listing indexes.
func (ix *ClusterIndex) membersLocked(clusterID int64) (int, []int, error) {
	if clusterID <= 0 {
		return 0, nil, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, clusterID)
	}
	level := int(clusterID>>idLevelShift) - 1
	cell := uint64(clusterID) & cellMask
	if level < 0 || level > ix.config.MaxZoom {
		return 0, nil, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, clusterID)
	}

	bits := ix.cellBits(level)
	var members []int
	for i, h := range ix.hashes {
		if h>>(64-bits) == cell {
			members = append(members, i)
		}
	}
	if len(members) == 0 || len(members) < ix.config.MinPoints {
		return 0, nil, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, clusterID)
	}
	return level, members, nil
}

// ExpansionZoom is the first zoom at which the cluster no longer renders as
// one group, or MaxZoom+1 when it holds together up to the clustering limit.
func (ix *ClusterIndex) ExpansionZoom(_ context.Context, clusterID int64) (float64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	level, members, err := ix.membersLocked(clusterID)
	if err != nil {
		return 0, err
	}

	for z := level + 1; z <= ix.config.MaxZoom; z++ {
		groups := ix.groupLocked(members, z)
		if len(groups) > 1 || len(groups[0].members) < ix.config.MinPoints {
			return float64(z), nil
		}
	}
	return float64(ix.config.MaxZoom + 1), nil
}

func (ix *ClusterIndex) ClusterCenter(_ context.Context, clusterID int64) (domain.GeoPoint, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	_, members, err := ix.membersLocked(clusterID)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return ix.centerLocked(members), nil
}
