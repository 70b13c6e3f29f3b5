package polylabel

import (
	"math"

	"github.com/paulmach/orb"
)

// cell is a candidate square region of the search space. Cells are write-once:
// they are scored on creation and never mutated afterwards.
//
// d is the signed distance from the cell center to the polygon boundary and
// max the greatest distance any point inside the cell could possibly have
// (d + h·√2). max >= d always, with equality exactly when h == 0.
type cell struct {
	x, y float64 // center
	h    float64 // half the side length
	d    float64 // signed distance from center to boundary
	max  float64 // upper bound on distance within the cell
}

// newCell scores a candidate square centered at (x, y) with half-size h.
func newCell(x, y, h float64, p orb.Polygon) *cell {
	d := polygonDistance(x, y, p)
	return &cell{
		x:   x,
		y:   y,
		h:   h,
		d:   d,
		max: d + h*math.Sqrt2,
	}
}

// centroidCell returns a zero-size cell at the area-weighted centroid of the
// outer ring, computed with the shoelace formula. The centroid is a cheap,
// usually high-quality initial guess for the pole. Degenerate rings with zero
// signed area fall back to the first vertex.
func centroidCell(p orb.Polygon) *cell {
	var area, x, y float64

	ring := p[0]
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		f := a[0]*b[1] - b[0]*a[1]
		x += (a[0] + b[0]) * f
		y += (a[1] + b[1]) * f
		area += f * 3
	}

	if area == 0 {
		return newCell(ring[0][0], ring[0][1], 0, p)
	}
	return newCell(x/area, y/area, 0, p)
}
