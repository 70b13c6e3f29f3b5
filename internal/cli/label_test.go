package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/razor-1/polylabel/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"geojson"}},
		{"svg", []string{"svg"}},
		{"geojson,svg", []string{"geojson", "svg"}},
		{"json, svg", []string{"json", "svg"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContainsFormat(t *testing.T) {
	formats := []string{"geojson", "svg"}
	if !containsFormat(formats, "svg") {
		t.Error("svg should be found")
	}
	if containsFormat(formats, "json") {
		t.Error("json should not be found")
	}
}

func TestWriteArtifactsSingleExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.svg")
	result := &pipeline.Result{
		Artifacts: map[string][]byte{"svg": []byte("<svg/>")},
	}

	paths, err := writeArtifacts(filepath.Join(dir, "in.geojson"), out, result)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 1 || paths[0] != out {
		t.Fatalf("paths = %v, want [%s]", paths, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestWriteArtifactsDefaultBase(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "countries.geojson")
	result := &pipeline.Result{
		Artifacts: map[string][]byte{
			"geojson": []byte("{}"),
			"svg":     []byte("<svg/>"),
		},
	}

	paths, err := writeArtifacts(input, "", result)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		base := filepath.Base(p)
		if base != "countries-labels.geojson" && base != "countries-labels.svg" {
			t.Errorf("unexpected output name %s", base)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("output file missing: %v", err)
		}
	}
}

func TestWriteArtifactsMultipleIgnoresExplicitSinglePath(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "out")
	result := &pipeline.Result{
		Artifacts: map[string][]byte{
			"geojson": []byte("{}"),
			"json":    []byte("{}"),
		},
	}

	paths, err := writeArtifacts(filepath.Join(dir, "in.geojson"), base, result)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := map[string]bool{base + ".geojson": true, base + ".json": true}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected path %s", p)
		}
	}
}
