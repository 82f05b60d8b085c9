package models

// Coordinates represents a geographical point defined by its longitude and latitude (WGS84 degrees).
type Coordinates struct {
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
}
