package models

import "time"

// Update is a coordination bulletin shown on the updates feed and pushed to
// live stream subscribers.
type Update struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Priority   string    `json:"priority"`
	Category   string    `json:"category"`
	DisasterID string    `json:"disaster_id,omitempty"`
	CreatedBy  string    `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
