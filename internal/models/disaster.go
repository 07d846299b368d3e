package models

import (
	"strings"
	"time"
)

// Urgency is the disaster severity tier that drives ranking weight emphasis.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// ParseUrgency is case-insensitive and falls back to medium for anything
// it does not recognize, including the empty string.
func ParseUrgency(s string) Urgency {
	switch strings.ToLower(s) {
	case "critical":
		return UrgencyCritical
	case "high":
		return UrgencyHigh
	case "low":
		return UrgencyLow
	default:
		return UrgencyMedium
	}
}

// ValidUrgency reports whether s names one of the four urgency tiers exactly.
func ValidUrgency(s string) bool {
	switch Urgency(s) {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

type Disaster struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	DisasterType string    `json:"disaster_type"`
	Urgency      Urgency   `json:"urgency"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	Status       string    `json:"status"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Coordinates returns the disaster's position, or nil if either axis is unset.
func (d *Disaster) Coordinates() *Coordinates {
	return coordsFrom(d.Latitude, d.Longitude)
}
