package models

import "time"

// Task statuses.
const (
	TaskOpen       = "open"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskOpen, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

type Task struct {
	ID             string    `json:"id"`
	DisasterID     string    `json:"disaster_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	RequiredSkills []string  `json:"required_skills"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	Address        string    `json:"address,omitempty"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Coordinates returns the task's own position, or nil if either axis is unset.
func (t *Task) Coordinates() *Coordinates {
	return coordsFrom(t.Latitude, t.Longitude)
}
