package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/razor-1/polylabel/pkg/cache"
)

const testCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "square"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "rect"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[20, 0], [34, 0], [34, 6], [20, 6], [20, 0]]]
      }
    }
  ]
}`

func writeTestInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.geojson")
	if err := os.WriteFile(path, []byte(testCollection), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatGeoJSON, FormatJSON, FormatSVG} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", f, err)
		}
	}
	if err := ValidateFormat("png"); err == nil {
		t.Error("ValidateFormat(png) = nil, want error")
	}
	if err := ValidateFormats([]string{FormatSVG, "bogus"}); err == nil {
		t.Error("ValidateFormats with bogus entry = nil, want error")
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("expected error for missing input")
	}

	opts = Options{Input: "in.geojson"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Precision != DefaultPrecision {
		t.Errorf("Precision = %v, want %v", opts.Precision, DefaultPrecision)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatGeoJSON {
		t.Errorf("Formats = %v, want [geojson]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second ValidateAndSetDefaults: %v", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(ctx, Options{
		Input:     writeTestInput(t),
		Precision: 0.1,
		Formats:   []string{FormatGeoJSON, FormatJSON, FormatSVG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.FeatureCount != 2 {
		t.Errorf("FeatureCount = %d, want 2", result.Stats.FeatureCount)
	}
	if len(result.Labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(result.Labels))
	}

	// 10x10 square: pole at center with clearance 5.
	sq := result.Labels[0]
	if sq.Feature.Name != "square" {
		t.Errorf("label 0 name = %q, want square", sq.Feature.Name)
	}
	if d := sq.Distance; d < 5-0.1 || d > 5+0.1 {
		t.Errorf("square clearance = %v, want ~5", d)
	}

	// 14x6 rectangle: clearance 3.
	if d := result.Labels[1].Distance; d < 3-0.1 || d > 3+0.1 {
		t.Errorf("rect clearance = %v, want ~3", d)
	}

	for _, format := range []string{FormatGeoJSON, FormatJSON, FormatSVG} {
		if len(result.Artifacts[format]) == 0 {
			t.Errorf("missing %s artifact", format)
		}
	}
	if !strings.Contains(string(result.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing <svg element")
	}
	if result.Stats.TotalProbes == 0 {
		t.Error("TotalProbes = 0, want > 0")
	}
	if result.CacheInfo.Hits != 0 {
		t.Errorf("Hits = %d, want 0 with null cache", result.CacheInfo.Hits)
	}
}

func TestRunnerExecuteCacheHit(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	input := writeTestInput(t)
	opts := Options{Input: input, Precision: 0.1}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.Misses != 2 || first.CacheInfo.Hits != 0 {
		t.Errorf("first run cache = %+v, want 2 misses", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, Options{Input: input, Precision: 0.1})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if second.CacheInfo.Hits != 2 {
		t.Errorf("second run hits = %d, want 2", second.CacheInfo.Hits)
	}
	for i := range first.Labels {
		if first.Labels[i].Location != second.Labels[i].Location {
			t.Errorf("label %d location changed across cached run", i)
		}
	}

	// Refresh bypasses the cache.
	third, err := runner.Execute(ctx, Options{Input: input, Precision: 0.1, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.Hits != 0 {
		t.Errorf("refresh run hits = %d, want 0", third.CacheInfo.Hits)
	}
}

func TestRunnerLoggerReachesSearch(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	runner := NewRunner(nil, nil, logger)

	// No per-run logger: the runner's must flow through to the search.
	_, err := runner.Execute(context.Background(), Options{
		Input:     writeTestInput(t),
		Precision: 0.1,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "search done") {
		t.Error("search debug output missing, runner logger was not applied")
	}
}

func TestRunnerLabelPolygon(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	p := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	l, hit, err := runner.LabelPolygon(ctx, p, 0.01)
	if err != nil {
		t.Fatalf("LabelPolygon: %v", err)
	}
	if hit {
		t.Error("hit = true with null cache")
	}
	if d := l.Distance; d < 0.5-0.01 || d > 0.5+0.01 {
		t.Errorf("clearance = %v, want ~0.5", d)
	}
	if l.Precision != 0.01 {
		t.Errorf("Precision = %v, want 0.01", l.Precision)
	}
}

func TestRunnerExecuteInvalidInput(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	if _, err := runner.Execute(context.Background(), Options{Input: "does-not-exist.geojson"}); err == nil {
		t.Error("expected error for missing input file")
	}
	if _, err := runner.Execute(context.Background(), Options{}); err == nil {
		t.Error("expected error for empty options")
	}
}
