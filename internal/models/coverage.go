package models

// Operator is a mobile network operator identified by its MCC/MNC code.
type Operator struct {
	ID   int    `json:"id"   yaml:"id"`   // ID is the mobile country + network code (e.g. 20801).
	Name string `json:"name" yaml:"name"` // Name is the display name of the operator.
}

// Capabilities tells which network generations were observed at a coverage point.
type Capabilities struct {
	G2 bool `json:"2G"`
	G3 bool `json:"3G"`
	G4 bool `json:"4G"`
}

// CoveragePoint is a single surveyed location of one operator.
// ID is assigned by the store and is used to break distance ties.
type CoveragePoint struct {
	ID         int64
	OperatorID int
	Location   Coordinates
	Capabilities
}

// Match is the nearest qualifying coverage point of one operator for a query.
type Match struct {
	Operator Operator
	Point    CoveragePoint
	Distance float64 // Distance in planar meters between the query and the point.
}
