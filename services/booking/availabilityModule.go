package booking

import (
	"iter"
	"slices"
	"strings"
	"time"

	"apptdesk/models"
)

// SlotWindow optionally narrows the enumeration window. Empty fields fall back to the
// weekday's office hours.
type SlotWindow struct {
	Start string // HH:MM
	End   string // HH:MM
}

// AvailableSlots lazily yields free "HH:MM" starts on date, stepping by the appointment
// duration. Each range over the sequence is a fresh pass against current state.
func (s *Scheduler) AvailableSlots(date string, window SlotWindow) (iter.Seq[string], error) {
	day, err := ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}
	dh, open := s.hours.For(day.Weekday())
	if !open {
		return func(func(string) bool) {}, nil
	}

	from, to := dh.Open, dh.Close
	if w := strings.TrimSpace(window.Start); w != "" {
		if from, err = ParseClockToMinutes(w); err != nil {
			return nil, validationErrorf("%v", err)
		}
	}
	if w := strings.TrimSpace(window.End); w != "" {
		if to, err = ParseClockToMinutes(w); err != nil {
			return nil, validationErrorf("%v", err)
		}
	}

	step := int(s.duration / time.Minute)
	if step <= 0 {
		step = 1
	}
	return func(yield func(string) bool) {
		for cur := from; cur+step <= to; cur += step {
			start := time.Date(day.Year(), day.Month(), day.Day(), 0, cur, 0, 0, s.loc)
			s.mu.RLock()
			free := s.slotAvailableLocked(start, "")
			s.mu.RUnlock()
			if free && !yield(MinutesToClock(cur)) {
				return
			}
		}
	}, nil
}

// ListAvailableSlots collects AvailableSlots into a slice.
func (s *Scheduler) ListAvailableSlots(date string, window SlotWindow) ([]string, error) {
	seq, err := s.AvailableSlots(date, window)
	if err != nil {
		return nil, err
	}
	slots := slices.Collect(seq)
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

// GetBooking looks an appointment up by confirmation number.
func (s *Scheduler) GetBooking(confirmation string) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.lookupLocked(confirmation)
	if !ok {
		return models.Appointment{}, false
	}
	return s.records[pos], true
}

// GetBookingsByPhone returns the non-cancelled appointments for phone in stored order.
func (s *Scheduler) GetBookingsByPhone(phone string) []models.Appointment {
	phone = strings.TrimSpace(phone)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Appointment{}
	for _, rec := range s.records {
		if rec.Phone == phone && !rec.IsCancelled() {
			out = append(out, rec)
		}
	}
	return out
}

// GetBookingsByDate returns the non-cancelled appointments on date ordered by start.
// Equal starts keep their stored order.
func (s *Scheduler) GetBookingsByDate(date string) ([]models.Appointment, error) {
	day, err := ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}
	key := dateKey(day)

	s.mu.RLock()
	positions := slices.Clone(s.byDate[key])
	out := make([]models.Appointment, 0, len(positions))
	slices.Sort(positions)
	for _, pos := range positions {
		if rec := s.records[pos]; !rec.IsCancelled() {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Appointment) int {
		return a.DatetimeISO.Compare(b.DatetimeISO)
	})
	return out, nil
}
