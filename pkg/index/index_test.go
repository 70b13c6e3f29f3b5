package index

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/razor-1/polylabel/pkg/io"
)

func testLabels() []io.Label {
	return []io.Label{
		{
			Feature: io.Feature{
				ID:      "west",
				Name:    "West Square",
				Polygon: orb.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}}},
			},
			Location: orb.Point{5, 5},
			Distance: 5,
		},
		{
			Feature: io.Feature{
				ID:      "east",
				Name:    "East Square",
				Polygon: orb.Polygon{{{20, 0}, {20, 4}, {24, 4}, {24, 0}}},
			},
			Location: orb.Point{22, 2},
			Distance: 2,
		},
	}
}

func TestBuildAndCount(t *testing.T) {
	idx := Build(testLabels())
	if idx.Count() != 2 {
		t.Fatalf("expected 2 entries, got %d", idx.Count())
	}
}

func TestQuery(t *testing.T) {
	idx := Build(testLabels())

	// Viewport covering only the west square
	got := idx.Query(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{12, 12}})
	if len(got) != 1 || got[0].ID != "west" {
		t.Fatalf("expected [west], got %+v", got)
	}

	// Viewport covering both, sorted by clearance descending
	got = idx.Query(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{30, 12}})
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "west" || got[1].ID != "east" {
		t.Errorf("expected clearance-descending order [west east], got [%s %s]", got[0].ID, got[1].ID)
	}

	// Viewport covering neither
	if got := idx.Query(orb.Bound{Min: orb.Point{50, 50}, Max: orb.Point{60, 60}}); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}

func TestAt(t *testing.T) {
	idx := Build(testLabels())

	got := idx.At(orb.Point{22, 2})
	if len(got) != 1 || got[0].ID != "east" {
		t.Fatalf("expected [east], got %+v", got)
	}

	// Inside the east square's bounds would be false here; between the two
	// polygons nothing contains the point.
	if got := idx.At(orb.Point{15, 5}); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}

func TestBounds(t *testing.T) {
	idx := Build(testLabels())

	b := idx.Bounds()
	if b.Min != (orb.Point{0, 0}) || b.Max != (orb.Point{24, 10}) {
		t.Errorf("unexpected union bounds: %+v", b)
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := Build(nil)
	if idx.Count() != 0 {
		t.Errorf("expected empty index, got %d entries", idx.Count())
	}
	if got := idx.Query(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}); len(got) != 0 {
		t.Errorf("query on empty index should return nothing, got %+v", got)
	}
}
