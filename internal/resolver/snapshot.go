package resolver

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/projection"
	"github.com/dhconnelly/rtreego"
)

const (
	treeDimensions  = 2
	treeMinChildren = 25
	treeMaxChildren = 50
	pointTolerance  = 0.01 // meters, extent of a point's bounding box
)

// ErrUnknownOperator is returned when a coverage point references an operator absent from the dataset.
var ErrUnknownOperator = errors.New("coverage point references an unknown operator")

type entry struct {
	Candidate
}

func (e *entry) Bounds() rtreego.Rect {
	return rtreego.Point{e.Location.X, e.Location.Y}.ToRect(pointTolerance)
}

// Snapshot is an immutable, indexed copy of the coverage dataset.
// All locations are stored projected in Web Mercator meters.
type Snapshot struct {
	operators map[int]models.Operator
	points    map[int64]models.CoveragePoint
	tree      *rtreego.Rtree
	builtAt   time.Time
}

// NewSnapshot projects and indexes points. Every point must belong to one of operators.
func NewSnapshot(operators []models.Operator, points []models.CoveragePoint) (*Snapshot, error) {
	byID := make(map[int]models.Operator, len(operators))
	for _, op := range operators {
		byID[op.ID] = op
	}

	stored := make(map[int64]models.CoveragePoint, len(points))
	entries := make([]rtreego.Spatial, 0, len(points))
	for _, pt := range points {
		if _, ok := byID[pt.OperatorID]; !ok {
			return nil, fmt.Errorf("%w: point %d, operator %d", ErrUnknownOperator, pt.ID, pt.OperatorID)
		}
		if _, dup := stored[pt.ID]; dup {
			return nil, fmt.Errorf("duplicate coverage point id %d", pt.ID)
		}

		location, err := projection.ToPlanar(projection.Geographic(pt.Location.Latitude, pt.Location.Longitude))
		if err != nil {
			return nil, fmt.Errorf("failed to project point %d: %w", pt.ID, err)
		}
		stored[pt.ID] = pt
		entries = append(entries, &entry{Candidate{
			PointID:    pt.ID,
			OperatorID: pt.OperatorID,
			Location:   location,
			Caps:       pt.Capabilities,
		}})
	}

	return &Snapshot{
		operators: byID,
		points:    stored,
		tree:      rtreego.NewTree(treeDimensions, treeMinChildren, treeMaxChildren, entries...),
		builtAt:   time.Now(),
	}, nil
}

// Size returns the number of indexed coverage points.
func (s *Snapshot) Size() int {
	return len(s.points)
}

// BuiltAt returns the time the snapshot was built.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Operators returns the operators of the snapshot ordered by ID.
func (s *Snapshot) Operators() []models.Operator {
	ops := make([]models.Operator, 0, len(s.operators))
	for _, op := range s.operators {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	return ops
}

// Nearest returns the closest coverage point of each operator strictly within maxDistance of
// query, ordered by operator ID.
func (s *Snapshot) Nearest(query models.Coordinates, maxDistance float64) ([]models.Match, error) {
	center, err := projection.ToPlanar(projection.Geographic(query.Latitude, query.Longitude))
	if err != nil {
		return nil, fmt.Errorf("failed to project query: %w", err)
	}

	hits := s.tree.SearchIntersect(rtreego.Point{center.X, center.Y}.ToRect(maxDistance))
	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, hit.(*entry).Candidate)
	}

	best, err := GroupNearest(center, candidates, maxDistance)
	if err != nil {
		return nil, err
	}

	return s.matches(best), nil
}

func (s *Snapshot) matches(best map[int]Nearest) []models.Match {
	result := make([]models.Match, 0, len(best))
	for opID, near := range best {
		result = append(result, models.Match{
			Operator: s.operators[opID],
			Point:    s.points[near.PointID],
			Distance: near.Distance,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Operator.ID < result[j].Operator.ID })

	return result
}
