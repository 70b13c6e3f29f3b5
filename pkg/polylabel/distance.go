package polylabel

import (
	"math"

	"github.com/paulmach/orb"
)

// segmentDistSq returns the squared Euclidean distance from (px, py) to the
// closest point on the segment a-b. Zero-length segments collapse to the
// distance to the single endpoint.
func segmentDistSq(px, py float64, a, b orb.Point) float64 {
	x, y := a[0], a[1]
	dx, dy := b[0]-x, b[1]-y

	if dx != 0 || dy != 0 {
		t := ((px-x)*dx + (py-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = b[0], b[1]
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx, dy = px-x, py-y
	return dx*dx + dy*dy
}

// polygonDistance returns the signed distance from (x, y) to the nearest edge
// of p across all rings: positive inside, negative outside, zero on an edge.
//
// Inside/outside uses the standard horizontal-ray parity test. Every ring
// toggles the flag independently, which yields correct odd-even semantics for
// holes without special-casing them. Rings are treated as implicitly closed:
// the edge loop pairs each vertex with its predecessor, wrapping to the last.
func polygonDistance(x, y float64, p orb.Polygon) float64 {
	inside := false
	minDistSq := math.MaxFloat64

	for _, ring := range p {
		for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
			a, b := ring[i], ring[j]

			if (a[1] > y) != (b[1] > y) &&
				x < (b[0]-a[0])*(y-a[1])/(b[1]-a[1])+a[0] {
				inside = !inside
			}

			minDistSq = math.Min(minDistSq, segmentDistSq(x, y, a, b))
		}
	}

	if inside {
		return math.Sqrt(minDistSq)
	}
	return -math.Sqrt(minDistSq)
}
