// Package polylabel computes the pole of inaccessibility of a polygon: the
// interior point farthest from the polygon's boundary. It is the point to put
// a label or marker on when it must stay inside an irregular shape with as
// much clearance as possible.
//
// # Algorithm
//
// The search is a best-first quadtree refinement. The polygon's bounding box
// is tiled with square cells, each scored by the signed distance from its
// center to the boundary plus an upper bound on how much better any point
// inside the cell could do (d + h·√2 for half-size h). Cells are popped from
// a max-priority frontier and either pruned - when their upper bound cannot
// beat the current best by more than the requested precision - or split into
// four quadrant children. The polygon centroid seeds the initial best guess.
//
// The computation is pure, single-threaded, and deterministic: for the same
// polygon and precision it returns the identical result on every run.
//
// # Basic Usage
//
// Polygons use [orb.Polygon]: ring 0 is the outer boundary, subsequent rings
// are holes. Rings are implicitly closed.
//
//	square := orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}}}
//	res := polylabel.Find(square, polylabel.WithPrecision(0.01))
//	// res.Location ≈ (0.5, 0.5), res.Distance ≈ 0.5
//
// # Degenerate Input
//
// A polygon whose outer ring has zero width or height short-circuits to the
// bounding box minimum corner with distance 0. Malformed polygons
// (self-intersecting rings, rings with fewer than 3 points) are not
// validated; callers are responsible for supplying simple polygons.
//
// # Diagnostics
//
// Progress reporting goes through [observability.SearchHooks] and through an
// optional logger ([WithLogger]). Both are purely observational and never
// affect the returned result.
//
// [observability.SearchHooks]: github.com/razor-1/polylabel/pkg/observability
package polylabel
