package monitor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/spacefarm/agrorisk/internal/models"
	"github.com/spacefarm/agrorisk/internal/observability"
	"github.com/spacefarm/agrorisk/internal/repository"
	"github.com/spacefarm/agrorisk/internal/risk"
)

// stubFetcher returns a fixed precipitation sum and records every request.
type stubFetcher struct {
	mu     sync.Mutex
	sum    float64
	calls  int
	starts []time.Time
	ends   []time.Time
}

func (s *stubFetcher) PrecipSumMM(_ context.Context, _, _ float64, start, end time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.starts = append(s.starts, start)
	s.ends = append(s.ends, end)
	return s.sum
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubEstimator returns fixed signals regardless of field or day.
type stubEstimator struct {
	moisture float64
	anomaly  float64
}

func (s stubEstimator) Estimate(int64, time.Time, float64) (float64, float64) {
	return s.moisture, s.anomaly
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(store *repository.Store, fetcher PrecipFetcher, est risk.SignalEstimator, clock clockwork.Clock) *Orchestrator {
	return NewOrchestrator(store, fetcher, est, clock, observability.NewMetricsForTesting(), discardLogger())
}

func TestOrchestrator_EmptyRegistryNoOp(t *testing.T) {
	store := repository.NewStore()
	fetcher := &stubFetcher{sum: 5}
	o := newTestOrchestrator(store, fetcher, risk.SimulatedEstimator{}, clockwork.NewRealClock())

	o.RunCycle(context.Background())

	if fetcher.callCount() != 0 {
		t.Errorf("expected no fetches with an empty registry, got %d", fetcher.callCount())
	}
	if store.CountAlerts() != 0 {
		t.Errorf("expected no alerts, got %d", store.CountAlerts())
	}
}

func TestOrchestrator_DroughtScenario(t *testing.T) {
	store := repository.NewStore()
	f, err := store.CreateField("Demo North Farm", 38.5816, -121.4944)
	if err != nil {
		t.Fatalf("CreateField failed: %v", err)
	}

	fetcher := &stubFetcher{sum: 5}
	est := stubEstimator{moisture: 0.1, anomaly: -0.2}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	o := newTestOrchestrator(store, fetcher, est, clock)

	o.RunCycle(context.Background())

	got, _ := store.GetField(f.ID)
	if got.LastRisk == nil {
		t.Fatal("expected a snapshot after the cycle")
	}
	if got.LastRisk.Type != models.RiskTypeDrought {
		t.Errorf("expected drought, got %s", got.LastRisk.Type)
	}
	if got.LastRisk.Severity <= 0 {
		t.Errorf("expected positive severity, got %d", got.LastRisk.Severity)
	}
	if got.LastRisk.Metrics.PrecipMM7d != 5 {
		t.Errorf("expected 5mm precip in snapshot metrics, got %f", got.LastRisk.Metrics.PrecipMM7d)
	}

	// Severity ~64 crosses the alert threshold.
	alerts := store.ListAlerts()
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].FieldID != f.ID || alerts[0].FieldName != "Demo North Farm" {
		t.Errorf("alert does not reference the field: %+v", alerts[0])
	}
	if alerts[0].RiskType != models.RiskTypeDrought || alerts[0].Severity < alertSeverityThreshold {
		t.Errorf("unexpected alert contents: %+v", alerts[0])
	}
}

func TestOrchestrator_FloodScenario(t *testing.T) {
	store := repository.NewStore()
	f, _ := store.CreateField("Bottoms", 10, 10)

	fetcher := &stubFetcher{sum: 150}
	o := newTestOrchestrator(store, fetcher, risk.SimulatedEstimator{}, clockwork.NewRealClock())

	o.RunCycle(context.Background())

	got, _ := store.GetField(f.ID)
	if got.LastRisk == nil || got.LastRisk.Type != models.RiskTypeFlood {
		t.Fatalf("expected flood classification for 150mm, got %+v", got.LastRisk)
	}
}

func TestOrchestrator_SevenDayWindow(t *testing.T) {
	store := repository.NewStore()
	store.CreateField("A", 1, 1)

	fetcher := &stubFetcher{}
	now := time.Date(2026, 8, 29, 23, 45, 0, 0, time.UTC)
	o := newTestOrchestrator(store, fetcher, stubEstimator{moisture: 0.5}, clockwork.NewFakeClockAt(now))

	o.RunCycle(context.Background())

	if fetcher.callCount() != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.callCount())
	}
	wantStart := time.Date(2026, 8, 22, 23, 45, 0, 0, time.UTC)
	if !fetcher.starts[0].Equal(wantStart) {
		t.Errorf("expected window start %v, got %v", wantStart, fetcher.starts[0])
	}
	if !fetcher.ends[0].Equal(now) {
		t.Errorf("expected window end %v, got %v", now, fetcher.ends[0])
	}
}

func TestOrchestrator_SameDayDeterminism(t *testing.T) {
	store := repository.NewStore()
	f, _ := store.CreateField("A", 1, 1)

	fetcher := &stubFetcher{sum: 30}
	day := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)
	o := newTestOrchestrator(store, fetcher, risk.SimulatedEstimator{}, clockwork.NewFakeClockAt(day))

	o.RunCycle(context.Background())
	first, _ := store.GetField(f.ID)

	o.RunCycle(context.Background())
	second, _ := store.GetField(f.ID)

	if first.LastRisk.Metrics != second.LastRisk.Metrics {
		t.Errorf("same-day cycles produced different metrics: %+v vs %+v",
			first.LastRisk.Metrics, second.LastRisk.Metrics)
	}

	// A different calendar day draws different simulated signals.
	nextDay := clockwork.NewFakeClockAt(day.AddDate(0, 0, 1))
	o2 := newTestOrchestrator(store, fetcher, risk.SimulatedEstimator{}, nextDay)
	o2.RunCycle(context.Background())
	third, _ := store.GetField(f.ID)

	if first.LastRisk.Metrics.SoilMoistureFrac == third.LastRisk.Metrics.SoilMoistureFrac &&
		first.LastRisk.Metrics.NDVIAnomaly == third.LastRisk.Metrics.NDVIAnomaly {
		t.Error("different days produced identical simulated signals")
	}
}

func TestOrchestrator_AlertThreshold(t *testing.T) {
	// Mild drought scores (0.3-0.25)*250 + (10-9)*3 = 15: non-normal but
	// below the threshold, so no alert.
	store := repository.NewStore()
	store.CreateField("A", 1, 1)

	o := newTestOrchestrator(store, &stubFetcher{sum: 9}, stubEstimator{moisture: 0.25, anomaly: -0.15}, clockwork.NewRealClock())
	o.RunCycle(context.Background())

	if store.CountAlerts() != 0 {
		t.Errorf("expected no alert below severity threshold, got %d", store.CountAlerts())
	}

	// Crop stress at anomaly -0.225 scores 90: alert.
	o2 := newTestOrchestrator(store, &stubFetcher{sum: 50}, stubEstimator{moisture: 0.5, anomaly: -0.225}, clockwork.NewRealClock())
	o2.RunCycle(context.Background())

	if store.CountAlerts() != 1 {
		t.Errorf("expected 1 alert, got %d", store.CountAlerts())
	}
}

func TestOrchestrator_NormalRaisesNoAlert(t *testing.T) {
	store := repository.NewStore()
	f, _ := store.CreateField("A", 1, 1)

	o := newTestOrchestrator(store, &stubFetcher{sum: 50}, stubEstimator{moisture: 0.5, anomaly: 0}, clockwork.NewRealClock())
	o.RunCycle(context.Background())

	got, _ := store.GetField(f.ID)
	if got.LastRisk == nil || got.LastRisk.Type != models.RiskTypeNormal {
		t.Fatalf("expected normal snapshot, got %+v", got.LastRisk)
	}
	if store.CountAlerts() != 0 {
		t.Errorf("normal classification must not raise alerts, got %d", store.CountAlerts())
	}
}

func TestOrchestrator_TrimsAlertLog(t *testing.T) {
	store := repository.NewStore()
	// Pre-fill the log to capacity, then run a cycle that raises one more.
	for i := 0; i < repository.MaxAlerts; i++ {
		store.AppendAlert(models.Alert{FieldID: 1, RiskType: models.RiskTypeDrought, Severity: 60})
	}
	store.CreateField("A", 1, 1)

	o := newTestOrchestrator(store, &stubFetcher{sum: 0}, stubEstimator{moisture: 0, anomaly: -0.25}, clockwork.NewRealClock())
	o.RunCycle(context.Background())

	if store.CountAlerts() != repository.MaxAlerts {
		t.Errorf("expected log capped at %d, got %d", repository.MaxAlerts, store.CountAlerts())
	}
	// The newest alert survived; the oldest was evicted.
	for _, a := range store.ListAlerts() {
		if a.ID == 1 {
			t.Error("expected alert 1 to be evicted")
		}
	}
}
