package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/cellmap/internal/models"
)

// Store is the persistence the loader writes to.
type Store interface {
	HasOperators(ctx context.Context) (bool, error)
	ReplaceDataset(ctx context.Context, operators []models.Operator, points []models.CoveragePoint) (int64, error)
}

// Loader initialises the coverage store from a processed dataset.
type Loader struct {
	store Store
	log   *slog.Logger
}

// NewLoader creates a Loader writing to store.
func NewLoader(store Store, log *slog.Logger) *Loader {
	return &Loader{store: store, log: log}
}

// Load writes operators and points unless the store is already initialised.
// With force the existing dataset is replaced. It reports whether anything was written.
func (l *Loader) Load(
	ctx context.Context,
	operators []models.Operator,
	points []models.CoveragePoint,
	force bool,
) (bool, error) {
	if !force {
		initialised, err := l.store.HasOperators(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to check store state: %w", err)
		}
		if initialised {
			l.log.InfoContext(ctx, "Database already initialized, skipping load")
			return false, nil
		}
	}

	known := make(map[int]bool, len(operators))
	for _, op := range operators {
		known[op.ID] = true
	}
	for _, pt := range points {
		if !known[pt.OperatorID] {
			return false, fmt.Errorf("point %d references unknown operator %d", pt.ID, pt.OperatorID)
		}
	}

	count, err := l.store.ReplaceDataset(ctx, operators, points)
	if err != nil {
		return false, fmt.Errorf("failed to load dataset: %w", err)
	}

	l.log.InfoContext(ctx, "Successfully initialized database", "operators", len(operators), "points", count)

	return true, nil
}
