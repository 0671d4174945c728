package booking

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"apptdesk/models"

	"go.uber.org/zap"
)

// NewAppointment carries the scalar fields of a booking request. Empty Email and
// Reason are stored as absent; an empty Status means confirmed.
type NewAppointment struct {
	PatientName string
	Phone       string
	Email       string
	Datetime    string
	Reason      string
	Status      string
}

// AppointmentChanges lists the fields an update may overwrite. Nil leaves a field alone.
type AppointmentChanges struct {
	Datetime *string
	Reason   *string
	Status   *string
}

// CreateBooking validates, conflict-checks, and persists a new appointment.
func (s *Scheduler) CreateBooking(ctx context.Context, req NewAppointment) (models.Appointment, error) {
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Datetime = strings.TrimSpace(req.Datetime)
	if req.Datetime == "" {
		return models.Appointment{}, validationErrorf("appointment datetime is required")
	}
	if req.Status == "" {
		req.Status = models.StatusConfirmed
	}
	start, err := ParseDateTime(req.Datetime, s.loc)
	if err != nil {
		return models.Appointment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.slotAvailableLocked(start, "") {
		return models.Appointment{}, &SlotError{Datetime: req.Datetime}
	}

	now := s.now()
	appt := models.Appointment{
		ID:                  s.lastID + 1,
		ConfirmationNumber:  s.nextConfirmationLocked(start),
		PatientName:         req.PatientName,
		Phone:               req.Phone,
		Email:               optional(req.Email),
		AppointmentDatetime: req.Datetime,
		DatetimeISO:         start,
		Reason:              optional(req.Reason),
		Status:              req.Status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.validate.Struct(appt); err != nil {
		return models.Appointment{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	next := append(slices.Clone(s.records), appt)
	if err := s.repo.SaveAll(ctx, next); err != nil {
		return models.Appointment{}, fmt.Errorf("persist appointments: %w", err)
	}

	pos := len(next) - 1
	s.records = next
	s.byDate.add(s.key(start), pos)
	s.byConf[appt.ConfirmationNumber] = pos
	s.lastID = appt.ID

	s.logger.Info("CreateBooking: appointment created",
		zap.String("confirmation", appt.ConfirmationNumber),
		zap.Time("start", start))
	return appt, nil
}

// UpdateBooking reschedules and/or edits an appointment. found is false when the
// confirmation number is unknown. A failed call leaves the store untouched.
func (s *Scheduler) UpdateBooking(ctx context.Context, confirmation string, changes AppointmentChanges) (appt models.Appointment, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, confirmation, changes)
}

// CancelBooking marks an appointment cancelled and reports whether it exists.
// Cancelling twice is a no-op the second time.
func (s *Scheduler) CancelBooking(ctx context.Context, confirmation string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.lookupLocked(confirmation)
	if !ok {
		return false, nil
	}
	if s.records[pos].IsCancelled() {
		return true, nil
	}
	status := models.StatusCancelled
	if _, _, err := s.updateLocked(ctx, confirmation, AppointmentChanges{Status: &status}); err != nil {
		return true, err
	}
	return true, nil
}

func (s *Scheduler) updateLocked(ctx context.Context, confirmation string, changes AppointmentChanges) (models.Appointment, bool, error) {
	pos, ok := s.lookupLocked(confirmation)
	if !ok {
		return models.Appointment{}, false, nil
	}
	rec := s.records[pos]
	confirmation = rec.ConfirmationNumber
	oldKey := s.key(rec.DatetimeISO)
	wasCancelled := rec.IsCancelled()

	if changes.Status != nil {
		if !models.ValidStatus(*changes.Status) {
			return models.Appointment{}, true, validationErrorf("unknown status %q", *changes.Status)
		}
		rec.Status = *changes.Status
	}

	rescheduled := false
	if changes.Datetime != nil {
		dt := strings.TrimSpace(*changes.Datetime)
		if dt != "" && dt != rec.AppointmentDatetime {
			start, err := ParseDateTime(dt, s.loc)
			if err != nil {
				return models.Appointment{}, true, err
			}
			if !s.slotAvailableLocked(start, confirmation) {
				return models.Appointment{}, true, &SlotError{Datetime: dt}
			}
			rec.AppointmentDatetime = dt
			rec.DatetimeISO = start
			rescheduled = true
		}
	}

	// Reactivating a cancelled booking must not take a slot someone else now holds.
	if wasCancelled && !rec.IsCancelled() && !rescheduled {
		if !s.slotAvailableLocked(rec.DatetimeISO, confirmation) {
			return models.Appointment{}, true, &SlotError{Datetime: rec.AppointmentDatetime}
		}
	}

	if changes.Reason != nil {
		reason := *changes.Reason
		rec.Reason = &reason
	}
	rec.UpdatedAt = s.now()
	if rec.UpdatedAt.Before(rec.CreatedAt) {
		rec.UpdatedAt = rec.CreatedAt
	}

	next := slices.Clone(s.records)
	next[pos] = rec
	if err := s.repo.SaveAll(ctx, next); err != nil {
		return models.Appointment{}, true, fmt.Errorf("persist appointments: %w", err)
	}
	s.records = next
	if newKey := s.key(rec.DatetimeISO); newKey != oldKey {
		s.byDate.remove(oldKey, pos)
		s.byDate.add(newKey, pos)
	}

	s.logger.Info("UpdateBooking: appointment updated",
		zap.String("confirmation", confirmation),
		zap.String("status", rec.Status),
		zap.Bool("rescheduled", rescheduled))
	return rec, true, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
