package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/razor-1/polylabel/pkg/errors"
)

func TestReadFeaturesCollection(t *testing.T) {
	input := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"id": "a",
				"properties": {"name": "alpha"},
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
			},
			{
				"type": "Feature",
				"properties": {},
				"geometry": {"type": "Polygon", "coordinates": [[[2,0],[3,0],[3,1],[2,1],[2,0]]]}
			}
		]
	}`
	features, err := ReadFeatures(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFeatures: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}
	if features[0].ID != "a" || features[0].Name != "alpha" {
		t.Errorf("feature 0 = %q/%q, want a/alpha", features[0].ID, features[0].Name)
	}
	if features[1].ID != "feature-1" {
		t.Errorf("feature 1 id = %q, want generated feature-1", features[1].ID)
	}
	if len(features[0].Polygon) != 1 || len(features[0].Polygon[0]) != 5 {
		t.Errorf("feature 0 polygon shape unexpected: %v", features[0].Polygon)
	}
}

func TestReadFeaturesSingleFeature(t *testing.T) {
	input := `{
		"type": "Feature",
		"id": 7,
		"properties": {"name": "seven"},
		"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
	}`
	features, err := ReadFeatures(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFeatures: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("got %d features, want 1", len(features))
	}
	if features[0].ID != "7" {
		t.Errorf("id = %q, want 7", features[0].ID)
	}
}

func TestReadFeaturesBareGeometry(t *testing.T) {
	input := `{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`
	features, err := ReadFeatures(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFeatures: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("got %d features, want 1", len(features))
	}
}

func TestReadFeaturesMultiPolygonExplodes(t *testing.T) {
	input := `{
		"type": "Feature",
		"id": "islands",
		"properties": {"name": "archipelago"},
		"geometry": {
			"type": "MultiPolygon",
			"coordinates": [
				[[[0,0],[1,0],[1,1],[0,1],[0,0]]],
				[[[5,0],[6,0],[6,1],[5,1],[5,0]]]
			]
		}
	}`
	features, err := ReadFeatures(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFeatures: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}
	if features[0].ID != "islands/0" || features[1].ID != "islands/1" {
		t.Errorf("part ids = %q, %q, want islands/0, islands/1", features[0].ID, features[1].ID)
	}
	for _, f := range features {
		if f.Name != "archipelago" {
			t.Errorf("part %s name = %q, want archipelago", f.ID, f.Name)
		}
	}
}

func TestReadFeaturesRejectsNonPolygonal(t *testing.T) {
	input := `{
		"type": "Feature",
		"geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}
	}`
	_, err := ReadFeatures(strings.NewReader(input))
	if !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("got %v, want invalid geometry error", err)
	}
}

func TestReadFeaturesNullGeometry(t *testing.T) {
	input := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "id": "empty", "properties": {}, "geometry": null}
		]
	}`
	_, err := ReadFeatures(strings.NewReader(input))
	if !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("got %v, want invalid geometry error", err)
	}
	if err != nil && !strings.Contains(err.Error(), "empty") {
		t.Errorf("error should name the feature: %v", err)
	}
}

func TestReadFeaturesInvalidInput(t *testing.T) {
	cases := map[string]string{
		"not json":         "{nope",
		"missing type":     `{"coordinates": []}`,
		"empty collection": `{"type": "FeatureCollection", "features": []}`,
	}
	for name, input := range cases {
		if _, err := ReadFeatures(strings.NewReader(input)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestImportFeaturesMissingFile(t *testing.T) {
	_, err := ImportFeatures(filepath.Join(t.TempDir(), "absent.geojson"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("got %v, want file not found error", err)
	}
}

func TestImportFeatures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.geojson")
	data := `{"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	features, err := ImportFeatures(path)
	if err != nil {
		t.Fatalf("ImportFeatures: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("got %d features, want 1", len(features))
	}
}

func sampleLabels() []Label {
	return []Label{
		{
			Feature: Feature{
				ID:      "a",
				Name:    "alpha",
				Polygon: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
			},
			Location:  orb.Point{0.5, 0.5},
			Distance:  0.5,
			Probes:    16,
			Precision: 0.1,
		},
	}
}

func TestWriteLabels(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLabels(&buf, sampleLabels()); err != nil {
		t.Fatalf("WriteLabels: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       any `json:"id"`
			Geometry struct {
				Type        string     `json:"type"`
				Coordinates [2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(buf.Bytes(), &fc); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %q", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features", len(fc.Features))
	}
	f := fc.Features[0]
	if f.Geometry.Type != "Point" {
		t.Errorf("geometry type = %q, want Point", f.Geometry.Type)
	}
	if f.Geometry.Coordinates != [2]float64{0.5, 0.5} {
		t.Errorf("coordinates = %v", f.Geometry.Coordinates)
	}
	if f.Properties["name"] != "alpha" {
		t.Errorf("name property = %v", f.Properties["name"])
	}
	if f.Properties["distance"] != 0.5 {
		t.Errorf("distance property = %v", f.Properties["distance"])
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleLabels()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	var out struct {
		Labels []struct {
			ID       string     `json:"id"`
			Location [2]float64 `json:"location"`
			Distance float64    `json:"distance"`
		} `json:"labels"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(out.Labels) != 1 {
		t.Fatalf("got %d labels", len(out.Labels))
	}
	if out.Labels[0].ID != "a" || out.Labels[0].Distance != 0.5 {
		t.Errorf("label = %+v", out.Labels[0])
	}
}

func TestExportLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.geojson")
	if err := ExportLabels(path, sampleLabels()); err != nil {
		t.Fatalf("ExportLabels: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "FeatureCollection") {
		t.Error("output missing FeatureCollection")
	}
}

func TestMarshalPolygonDeterministic(t *testing.T) {
	p := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	a, err := MarshalPolygon(p)
	if err != nil {
		t.Fatalf("MarshalPolygon: %v", err)
	}
	b, err := MarshalPolygon(p)
	if err != nil {
		t.Fatalf("MarshalPolygon: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding is not deterministic")
	}
	if !strings.Contains(string(a), `"Polygon"`) {
		t.Errorf("unexpected encoding: %s", a)
	}
}
