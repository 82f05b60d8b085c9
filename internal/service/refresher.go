package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/metrics"
	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/resolver"
)

// DatasetSource provides the full coverage dataset.
type DatasetSource interface {
	ListOperators(ctx context.Context) ([]models.Operator, error)
	LoadCoverage(ctx context.Context) ([]models.CoveragePoint, error)
}

// Refresher rebuilds the resolver snapshot from the source, initially and then periodically.
// A failed reload keeps the previous snapshot in service.
type Refresher struct {
	log      *slog.Logger
	source   DatasetSource
	resolver *resolver.Resolver
	metrics  *metrics.Metrics
	interval time.Duration
}

func NewRefresher(
	log *slog.Logger,
	source DatasetSource,
	res *resolver.Resolver,
	appMetrics *metrics.Metrics,
	interval time.Duration,
) *Refresher {
	return &Refresher{log: log, source: source, resolver: res, metrics: appMetrics, interval: interval}
}

// Refresh loads the dataset, indexes it off to the side and publishes it.
func (r *Refresher) Refresh(ctx context.Context) error {
	snap, err := r.build(ctx)
	if err != nil {
		r.metrics.SnapshotRefreshes.WithLabelValues("failure").Inc()
		return err
	}

	r.resolver.Publish(snap)
	r.metrics.SnapshotRefreshes.WithLabelValues("success").Inc()
	r.metrics.DatasetPoints.Set(float64(snap.Size()))
	r.metrics.SnapshotBuiltAt.Set(float64(snap.BuiltAt().Unix()))
	r.log.InfoContext(ctx, "Coverage snapshot published", "points", snap.Size(), "operators", len(snap.Operators()),
		"built_at", snap.BuiltAt())

	return nil
}

func (r *Refresher) build(ctx context.Context) (*resolver.Snapshot, error) {
	operators, err := r.source.ListOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load operators: %w", err)
	}

	points, err := r.source.LoadCoverage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load coverage points: %w", err)
	}

	snap, err := resolver.NewSnapshot(operators, points)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}

	return snap, nil
}

// Run reloads the snapshot every interval until ctx is cancelled. It returns at once when interval is not positive.
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.log.InfoContext(ctx, "Snapshot refresh disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.InfoContext(ctx, "Snapshot refresher started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.log.InfoContext(ctx, "Snapshot refresher stopped.")
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.log.ErrorContext(ctx, "Failed to refresh coverage snapshot", "error", err)
			}
		}
	}
}
