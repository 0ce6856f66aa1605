// Package risk derives a risk classification for a field from its recent
// climate metrics. Assess is pure: no clock, no randomness, no shared state.
package risk

import "github.com/spacefarm/agrorisk/internal/models"

const (
	msgDrought    = "Drought risk: very low rainfall, low soil moisture, and declining vegetation index"
	msgFlood      = "Flood risk: heavy recent rainfall and saturated soils"
	msgCropStress = "Vegetation stress: NDVI anomaly is below normal"
	msgNormal     = "No significant risk detected"
)

// Assess maps a metric triple to a classification, severity, and message.
// Rules are evaluated in strict priority order; the first match wins.
func Assess(m models.Metrics) models.Assessment {
	if m.PrecipMM7d < 10 && m.SoilMoistureFrac < 0.3 && m.NDVIAnomaly < -0.1 {
		return models.Assessment{
			Type:     models.RiskTypeDrought,
			Severity: clampSeverity((0.3-m.SoilMoistureFrac)*250 + (10-m.PrecipMM7d)*3),
			Message:  msgDrought,
		}
	}

	if m.PrecipMM7d > 120 || (m.PrecipMM7d > 80 && m.SoilMoistureFrac > 0.8) {
		return models.Assessment{
			Type:     models.RiskTypeFlood,
			Severity: clampSeverity((m.PrecipMM7d-80)*0.8 + (m.SoilMoistureFrac-0.6)*200),
			Message:  msgFlood,
		}
	}

	if m.NDVIAnomaly < -0.2 {
		return models.Assessment{
			Type:     models.RiskTypeCropStress,
			Severity: clampSeverity(-m.NDVIAnomaly * 400),
			Message:  msgCropStress,
		}
	}

	return models.Assessment{
		Type:     models.RiskTypeNormal,
		Severity: 0,
		Message:  msgNormal,
	}
}

func clampSeverity(raw float64) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return int(raw)
}
