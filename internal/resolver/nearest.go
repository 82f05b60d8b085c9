// Package resolver answers "nearest coverage point per operator within a radius" queries.
package resolver

import (
	"fmt"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/projection"
)

// DefaultMaxDistance is the threshold radius in planar meters.
const DefaultMaxDistance = 200.0

// Candidate is a coverage point already projected into the planar system of the query.
type Candidate struct {
	PointID    int64
	OperatorID int
	Location   projection.GeoPoint
	Caps       models.Capabilities
}

// Nearest is the winning candidate of an operator together with its distance to the query.
type Nearest struct {
	Candidate
	Distance float64
}

// GroupNearest keeps, for every operator, the candidate closest to query.
// Candidates at maxDistance or farther never qualify. Equal distances are won by the lowest PointID.
// Operators without a qualifying candidate are absent from the result.
// Query and candidates must share one planar system; any other combination is an error.
func GroupNearest(query projection.GeoPoint, candidates []Candidate, maxDistance float64) (map[int]Nearest, error) {
	best := make(map[int]Nearest)

	for _, cand := range candidates {
		dist, err := projection.Distance(query, cand.Location)
		if err != nil {
			return nil, fmt.Errorf("coverage point %d: %w", cand.PointID, err)
		}
		if dist >= maxDistance {
			continue
		}

		current, ok := best[cand.OperatorID]
		if ok && (current.Distance < dist || (current.Distance == dist && current.PointID < cand.PointID)) {
			continue
		}
		best[cand.OperatorID] = Nearest{Candidate: cand, Distance: dist}
	}

	return best, nil
}
