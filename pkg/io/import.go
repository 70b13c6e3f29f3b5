package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/razor-1/polylabel/pkg/errors"
)

// Feature is a single polygon to label, extracted from GeoJSON input.
type Feature struct {
	ID      string      // feature id, or a generated "feature-N" fallback
	Name    string      // "name" property when present
	Polygon orb.Polygon // ring 0 outer, rest holes
}

// Label pairs a feature with its computed pole of inaccessibility.
type Label struct {
	Feature   Feature
	Location  orb.Point
	Distance  float64
	Probes    int
	Precision float64
}

// ReadFeatures decodes GeoJSON from r into labelable features. The input may
// be a FeatureCollection, a single Feature, or a bare Geometry. MultiPolygon
// geometries explode into one feature per polygon.
func ReadFeatures(r io.Reader) ([]Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input")
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse GeoJSON")
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse FeatureCollection")
		}
		var features []Feature
		for i, f := range fc.Features {
			extracted, err := fromGeoJSON(f, i)
			if err != nil {
				return nil, err
			}
			features = append(features, extracted...)
		}
		if len(features) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidGeometry, "no polygonal features in collection")
		}
		return features, nil

	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse Feature")
		}
		return fromGeoJSON(f, 0)

	case "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing GeoJSON type")

	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse Geometry")
		}
		return fromGeoJSON(geojson.NewFeature(g.Geometry()), 0)
	}
}

// ImportFeatures reads features from a GeoJSON file at path.
func ImportFeatures(path string) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadFeatures(f)
}

// fromGeoJSON extracts labelable polygons from one GeoJSON feature.
// index is used for generated ids when the feature has none.
func fromGeoJSON(f *geojson.Feature, index int) ([]Feature, error) {
	id := featureID(f, index)
	name := f.Properties.MustString("name", "")

	// RFC 7946 allows "geometry": null.
	if f.Geometry == nil {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "feature %s: missing geometry", id)
	}

	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return []Feature{{ID: id, Name: name, Polygon: g}}, nil

	case orb.MultiPolygon:
		features := make([]Feature, len(g))
		for i, p := range g {
			partID := id
			if len(g) > 1 {
				partID = fmt.Sprintf("%s/%d", id, i)
			}
			features[i] = Feature{ID: partID, Name: name, Polygon: p}
		}
		return features, nil

	default:
		return nil, errors.New(errors.ErrCodeInvalidGeometry,
			"feature %s: unsupported geometry type %s (need Polygon or MultiPolygon)", id, f.Geometry.GeoJSONType())
	}
}

// featureID normalizes the GeoJSON feature id, which may be a string or a
// number, falling back to a positional id.
func featureID(f *geojson.Feature, index int) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%v", id)
	case int:
		return fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("feature-%d", index)
}
