package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacefarm/agrorisk/internal/models"
	"github.com/spacefarm/agrorisk/internal/observability"
	"github.com/spacefarm/agrorisk/internal/repository"
	"github.com/spacefarm/agrorisk/internal/risk"
)

// lookbackDays is the trailing precipitation window in calendar days.
const lookbackDays = 7

// alertSeverityThreshold is the minimum severity for a non-normal assessment
// to raise an alert.
const alertSeverityThreshold = 50

// PrecipFetcher is the slice of the climate client the orchestrator needs.
type PrecipFetcher interface {
	PrecipSumMM(ctx context.Context, latitude, longitude float64, start, end time.Time) float64
}

// Store combines the registries the orchestrator reads and mutates.
type Store interface {
	repository.FieldRepository
	repository.AlertRepository
}

// Orchestrator runs one fetch-assess-update pass over every registered field.
// It is invoked by the scheduler loop and synchronously by field creation and
// manual recompute; the store serializes the overlapping access.
type Orchestrator struct {
	store     Store
	fetcher   PrecipFetcher
	estimator risk.SignalEstimator
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewOrchestrator(store Store, fetcher PrecipFetcher, estimator risk.SignalEstimator, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		fetcher:   fetcher,
		estimator: estimator,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// RunCycle assesses every field present at invocation start. An empty
// registry is a no-op with no fetches performed.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	fields := o.store.ListFields()
	o.metrics.FieldsTracked.Set(float64(len(fields)))
	if len(fields) == 0 {
		return
	}

	started := o.clock.Now()
	end := started.UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	for _, f := range fields {
		o.assessField(ctx, f, start, end)
	}

	if evicted := o.store.TrimAlerts(repository.MaxAlerts); evicted > 0 {
		o.metrics.AlertsEvicted.Add(float64(evicted))
		o.logger.Debug("trimmed alert log", "evicted", evicted)
	}

	o.metrics.CyclesTotal.Inc()
	o.metrics.CycleDuration.Observe(o.clock.Since(started).Seconds())
	o.logger.Debug("cycle complete", "fields", len(fields))
}

func (o *Orchestrator) assessField(ctx context.Context, f models.Field, start, end time.Time) {
	precip := o.fetcher.PrecipSumMM(ctx, f.Latitude, f.Longitude, start, end)
	moisture, anomaly := o.estimator.Estimate(f.ID, end, precip)

	metrics := models.Metrics{
		PrecipMM7d:       precip,
		SoilMoistureFrac: moisture,
		NDVIAnomaly:      anomaly,
	}
	assessment := risk.Assess(metrics)

	o.store.SetFieldRisk(f.ID, models.RiskSnapshot{
		Assessment:  assessment,
		Metrics:     metrics,
		EvaluatedAt: o.clock.Now().UTC(),
	})

	if assessment.Type == models.RiskTypeNormal || assessment.Severity < alertSeverityThreshold {
		return
	}

	alert := o.store.AppendAlert(models.Alert{
		FieldID:   f.ID,
		FieldName: f.Name,
		RiskType:  assessment.Type,
		Severity:  assessment.Severity,
		Message:   assessment.Message,
		CreatedAt: o.clock.Now().UTC(),
	})
	o.metrics.AlertsRaised.Inc()
	o.logger.Info("alert raised",
		"alert_id", alert.ID, "field_id", f.ID, "field", f.Name,
		"risk_type", assessment.Type, "severity", assessment.Severity)
}
