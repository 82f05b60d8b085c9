package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/jackc/pgx/v5"
)

var coverageColumns = []string{"id", "operator_id", "latitude", "longitude", "g2", "g3", "g4"}

// HasOperators reports whether at least one operator is stored.
func (r *Repository) HasOperators(ctx context.Context) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM operators);`

	if err := r.db.QueryRow(ctx, query).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check operators: %w", err)
	}

	return exists, nil
}

// ReplaceDataset swaps the stored operators and coverage points for the given ones
// inside a single transaction. Point ids are kept so ties break the same way as in memory.
// It returns the number of points copied.
func (r *Repository) ReplaceDataset(
	ctx context.Context,
	operators []models.Operator,
	points []models.CoveragePoint,
) (count int64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `TRUNCATE coverage_points, operators;`); err != nil {
		return 0, fmt.Errorf("failed to clear dataset: %w", err)
	}

	insertOperator := `INSERT INTO operators (id, name) VALUES ($1, $2);`
	for _, op := range operators {
		if _, err = tx.Exec(ctx, insertOperator, op.ID, op.Name); err != nil {
			return 0, fmt.Errorf("failed to insert operator %d: %w", op.ID, err)
		}
	}

	count, err = tx.CopyFrom(ctx, pgx.Identifier{"coverage_points"}, coverageColumns,
		pgx.CopyFromSlice(len(points), func(i int) ([]any, error) {
			pt := points[i]
			return []any{
				pt.ID, pt.OperatorID, pt.Location.Latitude, pt.Location.Longitude, pt.G2, pt.G3, pt.G4,
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy coverage points: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit dataset: %w", err)
	}

	r.log.InfoContext(ctx, "Dataset replaced", "operators", len(operators), "points", count)

	return count, nil
}

// ListOperators returns all operators ordered by id.
func (r *Repository) ListOperators(ctx context.Context) ([]models.Operator, error) {
	query := `SELECT id, name FROM operators ORDER BY id;`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query operators: %w", err)
	}
	defer rows.Close()

	var operators []models.Operator
	for rows.Next() {
		var op models.Operator
		if errScan := rows.Scan(&op.ID, &op.Name); errScan != nil {
			return nil, fmt.Errorf("failed to scan operator: %w", errScan)
		}
		operators = append(operators, op)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return operators, nil
}

// LoadCoverage returns every stored coverage point ordered by id.
func (r *Repository) LoadCoverage(ctx context.Context) ([]models.CoveragePoint, error) {
	query := `
		SELECT id, operator_id, latitude, longitude, g2, g3, g4
		FROM coverage_points
		ORDER BY id;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverage points: %w", err)
	}
	defer rows.Close()

	var points []models.CoveragePoint
	for rows.Next() {
		var pt models.CoveragePoint
		errScan := rows.Scan(
			&pt.ID, &pt.OperatorID, &pt.Location.Latitude, &pt.Location.Longitude, &pt.G2, &pt.G3, &pt.G4,
		)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan coverage point: %w", errScan)
		}
		points = append(points, pt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Coverage points loaded", "count", len(points))

	return points, nil
}

// NearestWithin returns, per operator, the coverage point closest to coords in Web Mercator meters
// among those strictly closer than maxDistance. Ties go to the lowest point id.
func (r *Repository) NearestWithin(
	ctx context.Context,
	coords models.Coordinates,
	maxDistance float64,
) ([]models.Match, error) {
	query := `
		WITH q AS (
			SELECT ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857) AS geom
		),
		candidates AS (
			SELECT c.id, c.operator_id, c.latitude, c.longitude, c.g2, c.g3, c.g4,
				ST_Distance(ST_Transform(c.location, 3857), q.geom) AS distance
			FROM coverage_points c, q
			WHERE ST_DWithin(ST_Transform(c.location, 3857), q.geom, $3)
		)
		SELECT DISTINCT ON (c.operator_id)
			c.operator_id, o.name, c.id, c.latitude, c.longitude, c.g2, c.g3, c.g4, c.distance
		FROM candidates c
		JOIN operators o ON o.id = c.operator_id
		WHERE c.distance < $3
		ORDER BY c.operator_id, c.distance, c.id;
	`

	rows, err := r.db.Query(ctx, query, coords.Longitude, coords.Latitude, maxDistance)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest coverage: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		errScan := rows.Scan(
			&m.Operator.ID, &m.Operator.Name,
			&m.Point.ID, &m.Point.Location.Latitude, &m.Point.Location.Longitude,
			&m.Point.G2, &m.Point.G3, &m.Point.G4,
			&m.Distance,
		)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan nearest coverage: %w", errScan)
		}
		m.Point.OperatorID = m.Operator.ID
		matches = append(matches, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return matches, nil
}
