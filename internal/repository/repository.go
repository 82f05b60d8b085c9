// Package repository stores operators and coverage points in PostgreSQL with PostGIS.
package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/cellmap/internal/models"
)

// Interface is the coverage store used by ingestion, the snapshot refresher and SQL lookups.
type Interface interface {
	EnsureSchema(ctx context.Context) error
	HasOperators(ctx context.Context) (bool, error)
	ReplaceDataset(ctx context.Context, operators []models.Operator, points []models.CoveragePoint) (int64, error)
	ListOperators(ctx context.Context) ([]models.Operator, error)
	LoadCoverage(ctx context.Context) ([]models.CoveragePoint, error)
	NearestWithin(ctx context.Context, coords models.Coordinates, maxDistance float64) ([]models.Match, error)
}

var _ Interface = (*Repository)(nil)

type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a Repository on db.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
