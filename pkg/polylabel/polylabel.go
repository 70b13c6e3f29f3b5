package polylabel

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/razor-1/polylabel/pkg/observability"
)

// DefaultPrecision is the pruning tolerance used when none is supplied, in
// the same units as the polygon coordinates.
const DefaultPrecision = 1.0

// Result is the outcome of a search: the best interior point found and its
// distance to the polygon boundary. Distance is within the requested
// precision of the true optimum. Probes counts every cell evaluated.
type Result struct {
	Location orb.Point `json:"location"`
	Distance float64   `json:"distance"`
	Probes   int       `json:"probes"`
}

// Option configures a search.
type Option func(*config)

type config struct {
	precision float64
	logger    *log.Logger
}

// WithPrecision sets the pruning tolerance. Refinement stops once no cell can
// improve the best known distance by more than p. Non-positive values select
// [DefaultPrecision]; pass an arbitrarily small positive value for a tighter
// answer instead.
func WithPrecision(p float64) Option {
	return func(c *config) {
		if p > 0 {
			c.precision = p
		}
	}
}

// WithLogger attaches a logger that receives debug-level progress notices
// (intermediate best distances, total cells probed). Purely observational.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Find returns the pole of inaccessibility of polygon. Ring 0 is the outer
// boundary, subsequent rings are holes.
//
// The search always returns a result for well-formed input; degenerate input
// is handled rather than reported (see the package documentation). An empty
// polygon returns the zero Result.
func Find(polygon orb.Polygon, opts ...Option) Result {
	cfg := config{
		precision: DefaultPrecision,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return Result{}
	}

	start := time.Now()

	// Bounding box of the outer ring.
	outer := polygon[0]
	minX, minY := outer[0][0], outer[0][1]
	maxX, maxY := minX, minY
	for _, pt := range outer[1:] {
		minX = math.Min(minX, pt[0])
		minY = math.Min(minY, pt[1])
		maxX = math.Max(maxX, pt[0])
		maxY = math.Max(maxY, pt[1])
	}

	width := maxX - minX
	height := maxY - minY
	cellSize := math.Min(width, height)

	// Degenerate polygon: zero width or height. Sole fast-exit path.
	// Hooks still see a paired start/done.
	if cellSize == 0 {
		observability.Search().OnSearchStart(len(polygon), 0)
		observability.Search().OnSearchDone(0, 0, time.Since(start))
		return Result{Location: orb.Point{minX, minY}}
	}

	// Seed the frontier by tiling the bounding box.
	half := cellSize / 2
	frontier := newCellQueue()
	for x := minX; x < maxX; x += cellSize {
		for y := minY; y < maxY; y += cellSize {
			frontier.push(newCell(x+half, y+half, half, polygon))
		}
	}

	// Seed the best candidate: centroid, or the bbox center if it wins.
	best := centroidCell(polygon)
	if c := newCell(minX+width/2, minY+height/2, 0, polygon); c.d > best.d {
		best = c
	}

	probes := frontier.Len()
	observability.Search().OnSearchStart(len(polygon), probes)

	for frontier.Len() > 0 {
		c := frontier.pop()

		if c.d > best.d {
			best = c
			cfg.logger.Debug("found best", "distance", c.d, "probes", probes)
			observability.Search().OnImprove(c.d, probes)
		}

		// No point inside this cell can improve the best answer by more
		// than the requested precision.
		if c.max-best.d <= cfg.precision {
			continue
		}

		h := c.h / 2
		frontier.push(newCell(c.x-h, c.y-h, h, polygon))
		frontier.push(newCell(c.x+h, c.y-h, h, polygon))
		frontier.push(newCell(c.x-h, c.y+h, h, polygon))
		frontier.push(newCell(c.x+h, c.y+h, h, polygon))
		probes += 4
	}

	elapsed := time.Since(start)
	cfg.logger.Debug("search done", "distance", best.d, "probes", probes, "duration", elapsed)
	observability.Search().OnSearchDone(best.d, probes, elapsed)

	return Result{
		Location: orb.Point{best.x, best.y},
		Distance: best.d,
		Probes:   probes,
	}
}
