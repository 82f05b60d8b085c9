// Package ingest turns raw operator survey files into coverage points and loads them into the store.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/projection"
)

const (
	rawSeparator = ";"
	rawFields    = 6
	flagPresent  = "1"
)

// Projector converts regional projected meters to geographic coordinates.
type Projector interface {
	ProjectedToGeographic(x, y float64) (models.Coordinates, error)
}

// Stats summarises a raw file parse.
type Stats struct {
	Lines       int // Data lines read, header excluded.
	Accepted    int
	Malformed   int // Lines with a missing field or an unparsable number.
	OutOfRegion int // Lines rejected by a strict projector.
}

// ParseRaw reads a semicolon separated survey file `operator;x;y;2G;3G;4G` whose first line is a header.
// x and y are integer Lambert meters. Lines that cannot be parsed are skipped and counted;
// only read errors abort the parse. Points are numbered from 1 in file order.
func ParseRaw(ctx context.Context, r io.Reader, proj Projector, log *slog.Logger) ([]models.CoveragePoint, Stats, error) {
	var (
		stats  Stats
		points []models.CoveragePoint
	)

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, stats, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, stats, nil
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Lines++

		point, err := parseRawLine(line, proj)
		switch {
		case errors.Is(err, projection.ErrOutOfRegion):
			stats.OutOfRegion++
			log.DebugContext(ctx, "Skipping line outside the projection region", "line", lineNo, "error", err)
			continue
		case err != nil:
			stats.Malformed++
			log.DebugContext(ctx, "Skipping malformed line", "line", lineNo, "error", err)
			continue
		}

		stats.Accepted++
		point.ID = int64(stats.Accepted)
		points = append(points, point)
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read raw file at line %d: %w", lineNo, err)
	}

	return points, stats, nil
}

func parseRawLine(line string, proj Projector) (models.CoveragePoint, error) {
	fields := strings.Split(line, rawSeparator)
	if len(fields) < rawFields {
		return models.CoveragePoint{}, fmt.Errorf("expected %d fields, got %d", rawFields, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	operatorID, err := strconv.Atoi(fields[0])
	if err != nil {
		return models.CoveragePoint{}, fmt.Errorf("invalid operator id: %w", err)
	}
	x, err := strconv.Atoi(fields[1])
	if err != nil {
		return models.CoveragePoint{}, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.Atoi(fields[2])
	if err != nil {
		return models.CoveragePoint{}, fmt.Errorf("invalid y: %w", err)
	}

	coords, err := proj.ProjectedToGeographic(float64(x), float64(y))
	if err != nil {
		return models.CoveragePoint{}, err
	}

	return models.CoveragePoint{
		OperatorID: operatorID,
		Location:   coords,
		Capabilities: models.Capabilities{
			G2: fields[3] == flagPresent,
			G3: fields[4] == flagPresent,
			G4: fields[5] == flagPresent,
		},
	}, nil
}
