package models

import "time"

// Field is a monitored geographic point. IDs are assigned by the store,
// monotonically increasing and never reused within a process lifetime.
type Field struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	CreatedAt time.Time     `json:"created_at"`
	LastRisk  *RiskSnapshot `json:"last_risk"`
}
