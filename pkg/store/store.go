// Package store persists computed label records.
//
// This package defines the storage interface for label results with
// implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
//
// Records are immutable once saved; there is no update operation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/razor-1/polylabel/pkg/io"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// Record is a persisted label computation.
type Record struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	Geometry  json.RawMessage `json:"geometry" bson:"geometry"` // GeoJSON geometry as submitted
	Precision float64         `json:"precision" bson:"precision"`
	Location  [2]float64      `json:"location" bson:"location"`
	Distance  float64         `json:"distance" bson:"distance"`
	Probes    int             `json:"probes" bson:"probes"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}

// LabelPoint returns the stored label location as a point.
func (r *Record) LabelPoint() orb.Point {
	return orb.Point{r.Location[0], r.Location[1]}
}

// New creates a record from a computed label with a fresh id.
func New(name string, geometry json.RawMessage, l io.Label) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Name:      name,
		Geometry:  geometry,
		Precision: l.Precision,
		Location:  [2]float64{l.Location[0], l.Location[1]},
		Distance:  l.Distance,
		Probes:    l.Probes,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for label record storage backends.
type Store interface {
	// Save persists a record.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by id.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record.
	// Returns ErrNotFound if no record exists.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
