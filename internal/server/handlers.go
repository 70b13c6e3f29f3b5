package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/razor-1/polylabel/pkg/errors"
	"github.com/razor-1/polylabel/pkg/observability"
	"github.com/razor-1/polylabel/pkg/pipeline"
	"github.com/razor-1/polylabel/pkg/store"
)

// labelRequest is the body of POST /v1/labels.
type labelRequest struct {
	Name      string          `json:"name,omitempty"`
	Geometry  json.RawMessage `json:"geometry"`
	Precision float64         `json:"precision,omitempty"`
}

// labelResponse augments a stored record with cache information.
type labelResponse struct {
	*store.Record
	Cached bool `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if idx, ok := s.dataset(); ok {
		status["dataset_features"] = idx.Count()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if len(req.Geometry) == 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "geometry is required"))
		return
	}

	geom, err := geojson.UnmarshalGeometry(req.Geometry)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "invalid geometry"))
		return
	}
	polygon, ok := geom.Geometry().(orb.Polygon)
	if !ok {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported,
			"unsupported geometry type %q (only Polygon)", geom.Type))
		return
	}

	precision := req.Precision
	if precision <= 0 {
		precision = pipeline.DefaultPrecision
	}

	label, cached, err := s.runner.LabelPolygon(r.Context(), polygon, precision)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "labeling failed"))
		return
	}

	rec := store.New(req.Name, req.Geometry, label)
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "save record"))
		return
	}

	s.logger.Info("label created",
		"id", rec.ID,
		"distance", rec.Distance,
		"probes", rec.Probes,
		"cached", cached)
	writeJSON(w, http.StatusCreated, labelResponse{Record: rec, Cached: cached})
}

func (s *Server) handleGetLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		writeError(w, r, errors.New(errors.ErrCodeNotFound, "label %s not found", id))
		return
	}
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "load record"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "list records"))
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"labels": recs, "count": len(recs)})
}

func (s *Server) handleDeleteLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		writeError(w, r, errors.New(errors.ErrCodeNotFound, "label %s not found", id))
		return
	}
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "delete record"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDatasetQuery answers bbox queries against the pre-labeled dataset.
// GET /v1/dataset/labels?bbox=minx,miny,maxx,maxy
func (s *Server) handleDatasetQuery(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.dataset()
	if !ok {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no dataset configured"))
		return
	}

	bboxParam := r.URL.Query().Get("bbox")
	if bboxParam == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"labels": idx.All(),
			"count":  idx.Count(),
		})
		return
	}

	bound, err := parseBBox(bboxParam)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid bbox"))
		return
	}
	entries := idx.Query(bound)
	writeJSON(w, http.StatusOK, map[string]any{
		"labels": entries,
		"count":  len(entries),
	})
}

func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("want minx,miny,maxx,maxy, got %d values", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("value %d: %w", i, err)
		}
		vals[i] = v
	}
	if vals[0] > vals[2] || vals[1] > vals[3] {
		return orb.Bound{}, fmt.Errorf("min exceeds max")
	}
	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, nil
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": errors.UserMessage(err),
		},
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGeometry,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
