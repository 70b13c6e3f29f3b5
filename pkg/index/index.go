// Package index provides fast spatial queries over labeled features.
//
// The index stores one entry per labeled feature (polygon bounds, label
// point, clearance) in an R-tree, so a map view can ask "which labels fall
// in this viewport" in O(log N) instead of scanning every feature.
package index

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/razor-1/polylabel/pkg/io"
)

// minExtent keeps degenerate (zero width or height) bounds insertable;
// rtreego rejects rectangles with non-positive lengths.
const minExtent = 1e-9

// Entry is one labeled feature in the index.
type Entry struct {
	ID       string      // feature id
	Name     string      // display name, may be empty
	Polygon  orb.Polygon // source geometry
	Location orb.Point   // computed label point
	Distance float64     // clearance at the label point
}

// Bounds implements rtreego.Spatial using the polygon's bounding box.
func (e Entry) Bounds() rtreego.Rect {
	b := e.Polygon.Bound()
	point := rtreego.Point{b.Min[0], b.Min[1]}
	lengths := []float64{
		extent(b.Max[0] - b.Min[0]),
		extent(b.Max[1] - b.Min[1]),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func extent(v float64) float64 {
	if v < minExtent {
		return minExtent
	}
	return v
}

// Index provides spatial queries over labeled features.
type Index struct {
	entries []Entry
	rtree   *rtreego.Rtree
}

// Build creates an index from computed labels.
func Build(labels []io.Label) *Index {
	entries := make([]Entry, len(labels))

	// 2D R-tree, 25-50 children per node
	rtree := rtreego.NewTree(2, 25, 50)

	for i, l := range labels {
		entries[i] = Entry{
			ID:       l.Feature.ID,
			Name:     l.Feature.Name,
			Polygon:  l.Feature.Polygon,
			Location: l.Location,
			Distance: l.Distance,
		}
		rtree.Insert(entries[i])
	}

	return &Index{
		entries: entries,
		rtree:   rtree,
	}
}

// Query returns entries whose polygon bounds intersect b, sorted by
// clearance descending so the most prominent labels come first.
func (idx *Index) Query(b orb.Bound) []Entry {
	point := rtreego.Point{b.Min[0], b.Min[1]}
	lengths := []float64{
		extent(b.Max[0] - b.Min[0]),
		extent(b.Max[1] - b.Min[1]),
	}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil
	}

	spatials := idx.rtree.SearchIntersect(rect)
	result := make([]Entry, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, s.(Entry))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance != result[j].Distance {
			return result[i].Distance > result[j].Distance
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// At returns the entries whose polygon contains the point. Bounds narrow the
// candidates via the R-tree; exact containment decides.
func (idx *Index) At(p orb.Point) []Entry {
	rect, err := rtreego.NewRect(rtreego.Point{p[0], p[1]}, []float64{minExtent, minExtent})
	if err != nil {
		return nil
	}

	var result []Entry
	for _, s := range idx.rtree.SearchIntersect(rect) {
		e := s.(Entry)
		if planar.PolygonContains(e.Polygon, p) {
			result = append(result, e)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count returns the total number of entries in the index.
func (idx *Index) Count() int {
	return len(idx.entries)
}

// All returns every entry in the index.
func (idx *Index) All() []Entry {
	return idx.entries
}

// Bounds returns the union of all entry bounds in the index.
func (idx *Index) Bounds() orb.Bound {
	if len(idx.entries) == 0 {
		return orb.Bound{}
	}
	b := idx.entries[0].Polygon.Bound()
	for _, e := range idx.entries[1:] {
		b = b.Union(e.Polygon.Bound())
	}
	return b
}
