// Package pipeline provides the core labeling pipeline.
//
// This package implements the complete decode → label → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Read polygon features from GeoJSON input
//  2. Label: Compute the pole of inaccessibility for each feature
//  3. Render: Generate output in various formats (GeoJSON, JSON, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:     "countries.geojson",
//	    Precision: 0.01,
//	    Formats:   []string{"geojson"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := result.Artifacts["geojson"]
//
// Label a single polygon with caching:
//
//	label, hit, err := runner.LabelPolygon(ctx, polygon, 0.01)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	polyio "github.com/razor-1/polylabel/pkg/io"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPrecision is the search precision used when none is given.
	// Suitable for projected coordinates; callers working in degrees
	// should pass something much smaller.
	DefaultPrecision = 1.0
)

// Format constants for output formats.
const (
	FormatGeoJSON = "geojson"
	FormatJSON    = "json"
	FormatSVG     = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatGeoJSON: true,
	FormatJSON:    true,
	FormatSVG:     true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the labeling pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Decode options
	Input string `json:"input,omitempty"` // Path to a GeoJSON file

	// Label options
	Precision float64 `json:"precision,omitempty"`
	Refresh   bool    `json:"refresh,omitempty"` // Bypass the cache

	// Render options
	Formats []string `json:"formats,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Circles bool     `json:"circles,omitempty"` // Draw clearance circles in SVG output

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Labels holds the computed label for each input feature.
	Labels []polyio.Label

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks cache usage during the label stage.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FeatureCount int
	TotalProbes  int
	DecodeTime   time.Duration
	LabelTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits and misses for the label stage.
type CacheInfo struct {
	Hits   int
	Misses int
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: geojson, json, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return fmt.Errorf("input is required")
	}
	o.SetLabelDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLabelDefaults sets default values for the label stage.
func (o *Options) SetLabelDefaults() {
	if o.Precision <= 0 {
		o.Precision = DefaultPrecision
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatGeoJSON}
	}
}
