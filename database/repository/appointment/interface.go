package appointmentRepo

import (
	"context"
	"errors"

	"apptdesk/models"
)

// ErrCorruptStore is returned by LoadAll when the stored artifact cannot be decoded.
var ErrCorruptStore = errors.New("appointment store is corrupt")

// AppointmentRepository is the durable record store behind the scheduler. SaveAll
// replaces the stored set with records in one all-or-nothing write.
type AppointmentRepository interface {
	LoadAll(ctx context.Context) ([]models.Appointment, error)
	SaveAll(ctx context.Context, records []models.Appointment) error
}
