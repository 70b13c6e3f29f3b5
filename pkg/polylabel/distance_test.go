package polylabel

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestSegmentDistSq(t *testing.T) {
	a, b := orb.Point{0, 0}, orb.Point{10, 0}

	tests := []struct {
		name   string
		px, py float64
		want   float64
	}{
		{"projection inside segment", 5, 3, 9},
		{"clamped to start", -4, 3, 25},
		{"clamped to end", 13, 4, 25},
		{"on the segment", 7, 0, 0},
	}
	for _, tt := range tests {
		if got := segmentDistSq(tt.px, tt.py, a, b); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSegmentDistSqDegenerate(t *testing.T) {
	p := orb.Point{2, 2}
	if got := segmentDistSq(5, 6, p, p); got != 25 {
		t.Errorf("zero-length segment: got %v, want 25", got)
	}
}

func TestPolygonDistanceSignConvention(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}},
		{{4, 4}, {4, 6}, {6, 6}, {6, 4}},
	}

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"interior", 2, 2, 2},
		{"inside the hole", 5, 5, -1},
		{"outside the outer ring", 13, 5, -3},
		{"on an outer edge", 0, 5, 0},
		{"on a hole edge", 4, 5, 0},
	}
	for _, tt := range tests {
		if got := polygonDistance(tt.x, tt.y, poly); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPolygonDistanceUnclosedRing(t *testing.T) {
	// Rings are implicitly closed: the last vertex connects back to the
	// first, so literal closure must not change the result.
	open := orb.Polygon{{{0, 0}, {0, 4}, {4, 4}, {4, 0}}}
	closed := orb.Polygon{{{0, 0}, {0, 4}, {4, 4}, {4, 0}, {0, 0}}}

	for _, pt := range [][2]float64{{2, 2}, {1, 3}, {-1, 2}, {2, 5}} {
		do := polygonDistance(pt[0], pt[1], open)
		dc := polygonDistance(pt[0], pt[1], closed)
		if math.Abs(do-dc) > 1e-12 {
			t.Errorf("point %v: open ring %v != closed ring %v", pt, do, dc)
		}
	}
}
