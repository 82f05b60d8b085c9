package repository

import (
	"context"

	"github.com/UnknownOlympus/cellmap/internal/models"
)

// Finder answers proximity lookups with SQL, for deployments that do not keep a snapshot in memory.
type Finder struct {
	repo        *Repository
	maxDistance float64
}

// NewFinder returns a Finder using repo and the exclusive radius maxDistance.
func NewFinder(repo *Repository, maxDistance float64) *Finder {
	return &Finder{repo: repo, maxDistance: maxDistance}
}

func (f *Finder) Nearest(ctx context.Context, coords models.Coordinates) ([]models.Match, error) {
	return f.repo.NearestWithin(ctx, coords, f.maxDistance)
}

func (f *Finder) Operators(ctx context.Context) ([]models.Operator, error) {
	return f.repo.ListOperators(ctx)
}
