package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteLabels encodes labels as a GeoJSON FeatureCollection of points and
// writes it to w. Each point carries distance, probes, and precision
// properties so downstream tools can filter or style by clearance.
func WriteLabels(w io.Writer, labels []Label) error {
	fc := geojson.NewFeatureCollection()
	for _, l := range labels {
		f := geojson.NewFeature(l.Location)
		f.ID = l.Feature.ID
		if l.Feature.Name != "" {
			f.Properties["name"] = l.Feature.Name
		}
		f.Properties["distance"] = l.Distance
		f.Properties["probes"] = l.Probes
		f.Properties["precision"] = l.Precision
		fc.Append(f)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLabels writes labels to a GeoJSON file at path.
// This is a convenience wrapper around [WriteLabels] for file-based output.
func ExportLabels(path string, labels []Label) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLabels(f, labels)
}

// report mirrors Label in a flat, stable JSON shape.
type report struct {
	Labels []reportLabel `json:"labels"`
}

type reportLabel struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Location  [2]float64 `json:"location"`
	Distance  float64    `json:"distance"`
	Probes    int        `json:"probes"`
	Precision float64    `json:"precision"`
}

// WriteReport encodes labels as a plain JSON report and writes it to w.
// Unlike [WriteLabels] this omits the GeoJSON framing, which is easier to
// consume from scripts that only care about coordinates and clearance.
func WriteReport(w io.Writer, labels []Label) error {
	out := report{Labels: make([]reportLabel, len(labels))}
	for i, l := range labels {
		out.Labels[i] = reportLabel{
			ID:        l.Feature.ID,
			Name:      l.Feature.Name,
			Location:  [2]float64{l.Location[0], l.Location[1]},
			Distance:  l.Distance,
			Probes:    l.Probes,
			Precision: l.Precision,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalPolygon returns the canonical GeoJSON bytes of a polygon, used for
// content-addressed cache keys. The encoding is deterministic for a given
// polygon value.
func MarshalPolygon(p orb.Polygon) ([]byte, error) {
	return geojson.NewGeometry(p).MarshalJSON()
}
