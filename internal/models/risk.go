package models

import "time"

type RiskType string

const (
	RiskTypeDrought    RiskType = "drought"
	RiskTypeFlood      RiskType = "flood"
	RiskTypeCropStress RiskType = "crop_stress"
	RiskTypeNormal     RiskType = "normal"
)

// Metrics is the input triple a risk assessment was derived from.
type Metrics struct {
	PrecipMM7d       float64 `json:"precip_mm_7d"`
	SoilMoistureFrac float64 `json:"soil_moisture_frac"`
	NDVIAnomaly      float64 `json:"ndvi_anomaly"`
}

// Assessment is the output of one risk evaluation. Severity is always in [0, 100].
type Assessment struct {
	Type     RiskType `json:"risk_type"`
	Severity int      `json:"severity"`
	Message  string   `json:"message"`
}

// RiskSnapshot is a field's most recent assessment together with the metrics
// that produced it. Snapshots are immutable; a field's snapshot is replaced
// wholesale each cycle.
type RiskSnapshot struct {
	Assessment
	Metrics     Metrics   `json:"metrics"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}
