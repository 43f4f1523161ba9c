// Package store persists slicing run history for the preview server.
//
// A Run records one pipeline execution: its identifier, the source it
// sliced, the produced slice metadata, and the slice documents
// themselves. Backends:
//   - memory: in-memory storage for development and tests
//   - mongo: MongoDB-backed storage for deployments
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/svgslice/pkg/crop"
	"github.com/matzehuels/svgslice/pkg/geom"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a run does not exist.
	ErrNotFound = errors.New("run not found")
)

// SliceMeta describes one produced slice without its document bytes.
type SliceMeta struct {
	Name     string        `json:"name" bson:"name"`
	Viewport crop.Viewport `json:"viewport" bson:"viewport"`
}

// Run records one slicing run.
type Run struct {
	ID         string            `json:"id" bson:"_id"`
	SourceName string            `json:"source_name" bson:"source_name"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	Clusters   []geom.BBox       `json:"clusters" bson:"clusters"`
	Slices     []SliceMeta       `json:"slices" bson:"slices"`
	SVGs       map[string][]byte `json:"-" bson:"svgs"`
}

// Slice returns the document bytes for a named slice, or nil.
func (r *Run) Slice(name string) []byte {
	if r == nil {
		return nil
	}
	return r.SVGs[name]
}

// Store is the interface for run history backends.
type Store interface {
	// Put stores a run, replacing any run with the same ID.
	Put(ctx context.Context, run *Run) error

	// Get retrieves a run by ID.
	// Returns ErrNotFound if the run doesn't exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes runs older than the cutoff.
	Cleanup(ctx context.Context, olderThan time.Duration) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
