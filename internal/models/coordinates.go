package models

// Coordinates is a resolved (latitude, longitude) pair in decimal degrees.
// Zero is a legitimate value on both axes (equator, prime meridian), so
// optional positions are represented as *float64 fields and only promoted to
// Coordinates when both axes are present.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func coordsFrom(lat, lng *float64) *Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &Coordinates{Latitude: *lat, Longitude: *lng}
}
