package resolver

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/UnknownOlympus/cellmap/internal/models"
)

// ErrNoSnapshot is returned when a query arrives before any dataset was published.
var ErrNoSnapshot = errors.New("coverage dataset not loaded")

// Resolver serves queries from the currently published snapshot.
// Publishing replaces the snapshot with a single pointer store, so readers
// never observe a partially loaded dataset.
type Resolver struct {
	current     atomic.Pointer[Snapshot]
	maxDistance float64
}

// New creates a Resolver with the given threshold radius in planar meters.
func New(maxDistance float64) *Resolver {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	return &Resolver{maxDistance: maxDistance}
}

// Publish makes snap the dataset used by subsequent queries.
func (r *Resolver) Publish(snap *Snapshot) {
	r.current.Store(snap)
}

// Snapshot returns the published snapshot or nil.
func (r *Resolver) Snapshot() *Snapshot {
	return r.current.Load()
}

// Nearest resolves the best coverage point per operator around coords.
func (r *Resolver) Nearest(_ context.Context, coords models.Coordinates) ([]models.Match, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	return snap.Nearest(coords, r.maxDistance)
}

// Operators lists the operators of the published snapshot.
func (r *Resolver) Operators(_ context.Context) ([]models.Operator, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	return snap.Operators(), nil
}
