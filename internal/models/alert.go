package models

import "time"

// Alert records a notable risk event for a field. The field name is copied in
// so the alert stays meaningful after the field is deleted.
type Alert struct {
	ID        int64     `json:"id"`
	FieldID   int64     `json:"field_id"`
	FieldName string    `json:"field_name"`
	RiskType  RiskType  `json:"risk_type"`
	Severity  int       `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
