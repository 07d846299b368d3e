// Package ranking scores and orders volunteer candidates for a single task.
// Everything here is a pure function of its inputs: no I/O, no shared state,
// safe to call from concurrent requests.
package ranking

import (
	"math"
	"strings"

	"github.com/reliefops/volunteer-match/internal/models"
)

// sentinelDistanceKM stands in when either party has no usable coordinates.
// It lands in the last decay bracket and scores 0.
const sentinelDistanceKM = 9999

// SkillScore measures how well a volunteer's skills cover a task's required
// skills, 0-100. An empty requirement list is a neutral 50 (no signal either
// way); a volunteer with no skills scores 0 against any requirement.
//
// Matching is a bidirectional case-insensitive substring test, so "First Aid"
// satisfies "Basic First Aid Certified" and vice versa. Deliberately loose to
// tolerate free-text phrasing differences.
func SkillScore(volunteerSkills, requiredSkills []string) int {
	if len(requiredSkills) == 0 {
		return 50
	}
	if len(volunteerSkills) == 0 {
		return 0
	}

	matched := 0
	for _, required := range requiredSkills {
		r := strings.ToLower(required)
		for _, have := range volunteerSkills {
			h := strings.ToLower(have)
			if strings.Contains(h, r) || strings.Contains(r, h) {
				matched++
				break
			}
		}
	}

	return int(math.Round(float64(matched) / float64(len(requiredSkills)) * 100))
}

// DistanceScore maps a great-circle distance in kilometers to 0-100.
// Piecewise-linear decay, continuous at the bracket boundaries:
// 10km→90, 50km→70, 200km→40, 600km and beyond→0.
func DistanceScore(distanceKM float64) float64 {
	switch {
	case distanceKM <= 10:
		return 100 - distanceKM
	case distanceKM <= 50:
		return 90 - (distanceKM-10)*0.5
	case distanceKM <= 200:
		return 70 - (distanceKM-50)*0.2
	default:
		return math.Max(0, 40-(distanceKM-200)*0.1)
	}
}

// AvailabilityScore is an exact case-insensitive lookup; anything other than
// the three known states scores 0.
func AvailabilityScore(availability models.Availability) int {
	switch models.Availability(strings.ToLower(string(availability))) {
	case models.Available:
		return 100
	case models.Busy:
		return 50
	default:
		return 0
	}
}

// ReliabilityScore clamps the stored reliability value to [0,100] for
// ranking. A missing value defaults to 100; the stored value itself is never
// touched.
func ReliabilityScore(stored *float64) float64 {
	score := 100.0
	if stored != nil {
		score = *stored
	}
	return math.Max(0, math.Min(100, score))
}

// Weights are the urgency-dependent multipliers applied to the four
// component scores before averaging.
type Weights struct {
	Distance     float64
	Availability float64
	Skill        float64
	Reliability  float64
}

// Total is the divisor for the weighted average.
func (w Weights) Total() float64 {
	return w.Distance + w.Availability + w.Skill + w.Reliability
}

// UrgencyWeights returns the fixed weight row for an urgency tier. Under
// critical urgency proximity and immediate availability dominate while skill
// and reliability checks are relaxed; under low urgency the system can afford
// to be selective on skill and favor proven volunteers. Unknown tiers get the
// medium row.
func UrgencyWeights(urgency models.Urgency) Weights {
	switch urgency {
	case models.UrgencyCritical:
		return Weights{Distance: 1.5, Availability: 1.5, Skill: 0.8, Reliability: 0.7}
	case models.UrgencyHigh:
		return Weights{Distance: 1.2, Availability: 1.3, Skill: 1.0, Reliability: 0.9}
	case models.UrgencyLow:
		return Weights{Distance: 0.8, Availability: 0.9, Skill: 1.3, Reliability: 1.2}
	default:
		return Weights{Distance: 1.0, Availability: 1.0, Skill: 1.1, Reliability: 1.0}
	}
}
