package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/razor-1/polylabel/pkg/cache"
	polyio "github.com/razor-1/polylabel/pkg/io"
	"github.com/razor-1/polylabel/pkg/observability"
	"github.com/razor-1/polylabel/pkg/polylabel"
	"github.com/razor-1/polylabel/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete decode → label → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	// Before validation, which would otherwise default the logger to discard.
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	features, err := polyio.ImportFeatures(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.Stats.FeatureCount = len(features)

	r.Logger.Info("decoded features",
		"count", len(features),
		"duration", result.Stats.DecodeTime)

	// Stage 2: Label
	labelStart := time.Now()
	labels := make([]polyio.Label, 0, len(features))
	for _, f := range features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l, hit, err := r.labelFeature(ctx, f, opts)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", f.ID, err)
		}
		if hit {
			result.CacheInfo.Hits++
		} else {
			result.CacheInfo.Misses++
		}
		result.Stats.TotalProbes += l.Probes
		labels = append(labels, l)
	}
	result.Labels = labels
	result.Stats.LabelTime = time.Since(labelStart)

	r.Logger.Info("computed labels",
		"features", len(labels),
		"probes", result.Stats.TotalProbes,
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.LabelTime)

	// Stage 3: Render
	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, err := r.renderFormat(labels, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LabelPolygon computes the pole of inaccessibility for a single polygon with
// caching. It returns the label, whether it came from the cache, and any
// cache serialization error.
func (r *Runner) LabelPolygon(ctx context.Context, p orb.Polygon, precision float64) (polyio.Label, bool, error) {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	f := polyio.Feature{Polygon: p}
	return r.labelFeature(ctx, f, Options{Precision: precision, Logger: r.Logger})
}

// cachedLabel is the cache serialization of a computed label.
type cachedLabel struct {
	Location  orb.Point `json:"location"`
	Distance  float64   `json:"distance"`
	Probes    int       `json:"probes"`
	Precision float64   `json:"precision"`
}

func (r *Runner) labelFeature(ctx context.Context, f polyio.Feature, opts Options) (polyio.Label, bool, error) {
	l := polyio.Label{Feature: f, Precision: opts.Precision}

	geomData, err := polyio.MarshalPolygon(f.Polygon)
	if err != nil {
		return l, false, fmt.Errorf("marshal geometry: %w", err)
	}
	key := r.Keyer.LabelKey(cache.Hash(geomData), cache.LabelKeyOpts{
		Precision: opts.Precision,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var c cachedLabel
			if err := json.Unmarshal(data, &c); err == nil {
				observability.Cache().OnCacheHit(ctx, key)
				l.Location = c.Location
				l.Distance = c.Distance
				l.Probes = c.Probes
				return l, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	res := polylabel.Find(f.Polygon,
		polylabel.WithPrecision(opts.Precision),
		polylabel.WithLogger(opts.Logger))
	l.Location = res.Location
	l.Distance = res.Distance
	l.Probes = res.Probes

	if data, err := json.Marshal(cachedLabel{
		Location:  l.Location,
		Distance:  l.Distance,
		Probes:    l.Probes,
		Precision: opts.Precision,
	}); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLabel); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}

	return l, false, nil
}

func (r *Runner) renderFormat(labels []polyio.Label, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatGeoJSON:
		var buf bytes.Buffer
		if err := polyio.WriteLabels(&buf, labels); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := polyio.WriteReport(&buf, labels); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatSVG:
		svgOpts := []render.SVGOption{}
		if opts.Width > 0 && opts.Height > 0 {
			svgOpts = append(svgOpts, render.WithSize(opts.Width, opts.Height))
		}
		if opts.Circles {
			svgOpts = append(svgOpts, render.WithCircles())
		}
		return render.RenderSVG(labels, svgOpts...), nil
	default:
		return nil, ValidateFormat(format)
	}
}

// applyLogger ensures the options logger falls back to the runner's logger.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Close releases cache resources held by the runner.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
