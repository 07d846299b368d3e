package models

import (
	"strings"
	"time"
)

// Availability is a volunteer's self-reported readiness state.
type Availability string

const (
	Available Availability = "available"
	Busy      Availability = "busy"
	Offline   Availability = "offline"
)

// ValidAvailability reports whether s is one of the three known states.
func ValidAvailability(s string) bool {
	switch Availability(strings.ToLower(s)) {
	case Available, Busy, Offline:
		return true
	}
	return false
}

type Volunteer struct {
	ID                 string       `json:"id"`
	ProfileID          string       `json:"profile_id"`
	Name               string       `json:"name"`
	Email              string       `json:"email"`
	Phone              string       `json:"phone,omitempty"`
	Skills             []string     `json:"skills"`
	Availability       Availability `json:"availability"`
	City               string       `json:"city,omitempty"`
	State              string       `json:"state,omitempty"`
	Country            string       `json:"country,omitempty"`
	Latitude           *float64     `json:"latitude"`
	Longitude          *float64     `json:"longitude"`
	CompletedTasks     int          `json:"completed_tasks"`
	TotalAssignedTasks int          `json:"total_assigned_tasks"`
	// ReliabilityScore is accumulated from completion history and is not
	// bounded at the source; the ranker clamps its own copy to [0,100].
	ReliabilityScore *float64  `json:"reliability_score"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Coordinates returns the volunteer's position, or nil if either axis is unset.
func (v *Volunteer) Coordinates() *Coordinates {
	return coordsFrom(v.Latitude, v.Longitude)
}
