package models

import "time"

// Assignment statuses. Assignments start pending; the volunteer accepts,
// declines, or later completes them.
const (
	AssignmentPending   = "pending"
	AssignmentAccepted  = "accepted"
	AssignmentDeclined  = "declined"
	AssignmentCompleted = "completed"
)

// ValidAssignmentTransition reports whether s is a status a volunteer may
// move an assignment to.
func ValidAssignmentTransition(s string) bool {
	switch s {
	case AssignmentAccepted, AssignmentDeclined, AssignmentCompleted:
		return true
	}
	return false
}

type Assignment struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	VolunteerID string `json:"volunteer_id"`
	Status      string `json:"status"`
	// MatchScore is the ranker's final composite at assignment time, 0 for
	// manual assignments.
	MatchScore int       `json:"match_score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
