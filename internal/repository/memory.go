package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/spacefarm/agrorisk/internal/models"
)

// MaxAlerts is the retained alert count; older entries are evicted first.
const MaxAlerts = 100

// Store holds all process-lifetime state: the field registry and the bounded
// alert log. It is shared between the scheduler loop and request handlers, so
// every read-modify-write sequence runs under the mutex.
type Store struct {
	mu          sync.RWMutex
	fields      map[int64]*models.Field
	alerts      []models.Alert
	nextFieldID int64
	nextAlertID int64
}

func NewStore() *Store {
	return &Store{
		fields: make(map[int64]*models.Field),
	}
}

func (s *Store) CreateField(name string, latitude, longitude float64) (*models.Field, error) {
	if name == "" {
		return nil, &ValidationError{Reason: "name must not be empty"}
	}
	if latitude < -90 || latitude > 90 {
		return nil, &ValidationError{Reason: "latitude must be in [-90, 90]"}
	}
	if longitude < -180 || longitude > 180 {
		return nil, &ValidationError{Reason: "longitude must be in [-180, 180]"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextFieldID++
	f := &models.Field{
		ID:        s.nextFieldID,
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		CreatedAt: time.Now().UTC(),
	}
	s.fields[f.ID] = f
	return copyField(f), nil
}

// ListFields returns a point-in-time copy of the registry.
func (s *Store) ListFields() []models.Field {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Field, 0, len(s.fields))
	for _, f := range s.fields {
		result = append(result, *copyField(f))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *Store) GetField(id int64) (*models.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.fields[id]
	if !ok {
		return nil, ErrFieldNotFound
	}
	return copyField(f), nil
}

// DeleteField removes the field but leaves any alerts it generated in place.
func (s *Store) DeleteField(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fields[id]; !ok {
		return ErrFieldNotFound
	}
	delete(s.fields, id)
	return nil
}

// SetFieldRisk replaces the field's snapshot wholesale. A field deleted
// mid-cycle is skipped silently.
func (s *Store) SetFieldRisk(id int64, snap models.RiskSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fields[id]
	if !ok {
		return
	}
	f.LastRisk = &snap
}

func (s *Store) CountFields() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

func (s *Store) AppendAlert(a models.Alert) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAlertID++
	a.ID = s.nextAlertID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.alerts = append(s.alerts, a)
	return a
}

// ListAlerts returns alerts newest first. The stable sort keeps
// equal-timestamp alerts in insertion order.
func (s *Store) ListAlerts() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Alert, len(s.alerts))
	copy(result, s.alerts)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// TrimAlerts drops the oldest entries beyond max and reports how many were
// evicted.
func (s *Store) TrimAlerts(max int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	excess := len(s.alerts) - max
	if excess <= 0 {
		return 0
	}
	s.alerts = append(s.alerts[:0:0], s.alerts[excess:]...)
	return excess
}

func (s *Store) CountAlerts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

func copyField(f *models.Field) *models.Field {
	c := *f
	if f.LastRisk != nil {
		snap := *f.LastRisk
		c.LastRisk = &snap
	}
	return &c
}
