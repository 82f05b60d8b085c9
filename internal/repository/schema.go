package repository

import (
	"context"
	"fmt"
)

// schemaStatements create the coverage schema. Every statement is idempotent.
// location is derived from latitude/longitude and indexed in Web Mercator,
// the plane distances are measured in.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis;`,
	`CREATE TABLE IF NOT EXISTS operators (
		id integer PRIMARY KEY,
		name varchar(50) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS coverage_points (
		id bigint PRIMARY KEY,
		operator_id integer NOT NULL REFERENCES operators (id) ON DELETE CASCADE,
		latitude double precision NOT NULL,
		longitude double precision NOT NULL,
		g2 boolean NOT NULL,
		g3 boolean NOT NULL,
		g4 boolean NOT NULL,
		location geometry(Point, 4326)
			GENERATED ALWAYS AS (ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)) STORED
	);`,
	`CREATE INDEX IF NOT EXISTS coverage_points_operator_idx ON coverage_points (operator_id);`,
	`CREATE INDEX IF NOT EXISTS coverage_points_mercator_idx
		ON coverage_points USING gist (ST_Transform(location, 3857));`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	r.log.DebugContext(ctx, "Database schema is up to date")

	return nil
}
