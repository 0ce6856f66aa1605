package repository

import (
	"errors"
	"fmt"

	"github.com/spacefarm/agrorisk/internal/models"
)

// ErrFieldNotFound is returned for operations referencing an unknown field id.
var ErrFieldNotFound = errors.New("field not found")

// ValidationError rejects malformed field-creation input. No partial state is
// created when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field: %s", e.Reason)
}

type FieldRepository interface {
	CreateField(name string, latitude, longitude float64) (*models.Field, error)
	ListFields() []models.Field
	GetField(id int64) (*models.Field, error)
	DeleteField(id int64) error
	SetFieldRisk(id int64, snap models.RiskSnapshot)
	CountFields() int
}

type AlertRepository interface {
	AppendAlert(a models.Alert) models.Alert
	ListAlerts() []models.Alert
	TrimAlerts(max int) int
	CountAlerts() int
}
