package ranking

import (
	"math"
	"sort"

	"github.com/reliefops/volunteer-match/internal/models"
)

// DefaultTopN is how many candidates Top returns when the caller does not
// say.
const DefaultTopN = 5

// DistanceFunc computes great-circle distance in kilometers between two
// (lat, lng) pairs in decimal degrees.
type DistanceFunc func(lat1, lng1, lat2, lng2 float64) float64

// ScoreBreakdown carries the rounded component scores and the weighted
// composite, each 0-100.
type ScoreBreakdown struct {
	Skill        int `json:"skill"`
	Distance     int `json:"distance"`
	Availability int `json:"availability"`
	Reliability  int `json:"reliability"`
	Final        int `json:"final"`
}

// RankedVolunteer is one scored candidate. Volunteer points back at the
// original record for display; the ranker never mutates it.
type RankedVolunteer struct {
	TaskID         string            `json:"task_id"`
	VolunteerID    string            `json:"volunteer_id"`
	VolunteerName  string            `json:"volunteer_name"`
	VolunteerEmail string            `json:"volunteer_email"`
	DistanceKM     float64           `json:"distance"`
	Scores         ScoreBreakdown    `json:"scores"`
	Volunteer      *models.Volunteer `json:"volunteer_data"`
}

// Ranker orchestrates the score model over a candidate list. The distance
// function is injected so the package stays free of geo dependencies.
type Ranker struct {
	distance DistanceFunc
}

func NewRanker(distance DistanceFunc) *Ranker {
	return &Ranker{distance: distance}
}

// Rank scores every candidate against the task and returns the full list in
// descending final-score order. Ties keep their input order. An empty
// candidate list yields an empty slice.
//
// The reference point for distance is the first of (explicit target, task
// position, disaster position) that has both axes set. Zero is a valid
// coordinate on either axis.
func (r *Ranker) Rank(volunteers []models.Volunteer, task *models.Task, disaster *models.Disaster, target *models.Coordinates) []RankedVolunteer {
	ranked := make([]RankedVolunteer, 0, len(volunteers))
	if len(volunteers) == 0 {
		return ranked
	}

	weights := UrgencyWeights(models.ParseUrgency(string(disaster.Urgency)))

	if target == nil {
		target = task.Coordinates()
	}
	if target == nil {
		target = disaster.Coordinates()
	}

	for i := range volunteers {
		v := &volunteers[i]

		distanceKM := float64(sentinelDistanceKM)
		if pos := v.Coordinates(); pos != nil && target != nil {
			distanceKM = r.distance(pos.Latitude, pos.Longitude, target.Latitude, target.Longitude)
		}

		skill := float64(SkillScore(v.Skills, task.RequiredSkills))
		distance := DistanceScore(distanceKM)
		availability := float64(AvailabilityScore(v.Availability))
		reliability := ReliabilityScore(v.ReliabilityScore)

		final := (skill*weights.Skill +
			distance*weights.Distance +
			availability*weights.Availability +
			reliability*weights.Reliability) / weights.Total()

		ranked = append(ranked, RankedVolunteer{
			TaskID:         task.ID,
			VolunteerID:    v.ID,
			VolunteerName:  v.Name,
			VolunteerEmail: v.Email,
			DistanceKM:     math.Round(distanceKM*10) / 10,
			Scores: ScoreBreakdown{
				Skill:        int(math.Round(skill)),
				Distance:     int(math.Round(distance)),
				Availability: int(math.Round(availability)),
				Reliability:  int(math.Round(reliability)),
				Final:        int(math.Round(final)),
			},
			Volunteer: v,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.Final > ranked[j].Scores.Final
	})

	return ranked
}

// Top returns the first topN of the full ranking; topN <= 0 means
// DefaultTopN.
func (r *Ranker) Top(volunteers []models.Volunteer, task *models.Task, disaster *models.Disaster, topN int, target *models.Coordinates) []RankedVolunteer {
	if topN <= 0 {
		topN = DefaultTopN
	}
	ranked := r.Rank(volunteers, task, disaster, target)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
