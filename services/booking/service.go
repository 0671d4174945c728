package booking

import (
	"context"
	"iter"

	"apptdesk/models"
)

// BookingService is the surface the conversational and HTTP layers depend on.
type BookingService interface {
	IsSlotAvailable(datetime, excludeConfirmation string) (bool, error)
	CreateBooking(ctx context.Context, req NewAppointment) (models.Appointment, error)
	GetBooking(confirmation string) (models.Appointment, bool)
	GetBookingsByPhone(phone string) []models.Appointment
	GetBookingsByDate(date string) ([]models.Appointment, error)
	UpdateBooking(ctx context.Context, confirmation string, changes AppointmentChanges) (models.Appointment, bool, error)
	CancelBooking(ctx context.Context, confirmation string) (bool, error)
	AvailableSlots(date string, window SlotWindow) (iter.Seq[string], error)
	ListAvailableSlots(date string, window SlotWindow) ([]string, error)
}

var _ BookingService = (*Scheduler)(nil)
