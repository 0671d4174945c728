package booking

import (
	"context"
	"sync"
	"time"

	appointmentRepo "apptdesk/database/repository/appointment"
	"apptdesk/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const DefaultDuration = 30 * time.Minute

// Config is supplied by the hosting application at construction time.
type Config struct {
	Duration    time.Duration
	OfficeHours OfficeHours
	Location    *time.Location
	Now         func() time.Time
}

// Scheduler owns appointment state. Every mutation rewrites the full store while holding
// the write lock, so two callers can never both pass the availability check for one slot.
type Scheduler struct {
	mu       sync.RWMutex
	repo     appointmentRepo.AppointmentRepository
	logger   *zap.Logger
	validate *validator.Validate

	hours    OfficeHours
	duration time.Duration
	loc      *time.Location
	now      func() time.Time

	records []models.Appointment
	byDate  dateIndex
	byConf  map[string]int
	lastID  int
}

// NewScheduler loads every record from repo. A store that cannot be read is logged and
// treated as empty so startup never blocks on it.
func NewScheduler(ctx context.Context, repo appointmentRepo.AppointmentRepository, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.OfficeHours == nil {
		cfg.OfficeHours = DefaultOfficeHours()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		repo:     repo,
		logger:   logger,
		validate: validator.New(),
		hours:    cfg.OfficeHours,
		duration: cfg.Duration,
		loc:      cfg.Location,
		now:      cfg.Now,
	}

	records, err := repo.LoadAll(ctx)
	if err != nil {
		logger.Warn("NewScheduler: failed to load appointments, starting empty", zap.Error(err))
		records = nil
	}
	s.rebuild(records)
	logger.Info("NewScheduler: appointments loaded",
		zap.Int("count", len(s.records)),
		zap.Duration("duration", s.duration))
	return s
}

func (s *Scheduler) rebuild(records []models.Appointment) {
	s.records = records
	s.byDate = dateIndex{}
	s.byConf = make(map[string]int, len(records))
	s.lastID = 0
	for i := range s.records {
		rec := &s.records[i]
		if rec.DatetimeISO.IsZero() {
			if t, err := ParseDateTime(rec.AppointmentDatetime, s.loc); err == nil {
				rec.DatetimeISO = t
			}
		}
		if !rec.DatetimeISO.IsZero() {
			s.byDate.add(s.key(rec.DatetimeISO), i)
		}
		if _, dup := s.byConf[rec.ConfirmationNumber]; !dup {
			s.byConf[rec.ConfirmationNumber] = i
		}
		if rec.ID > s.lastID {
			s.lastID = rec.ID
		}
	}
}

func (s *Scheduler) Duration() time.Duration { return s.duration }

func (s *Scheduler) Location() *time.Location { return s.loc }

func (s *Scheduler) OfficeHours() OfficeHours { return s.hours }

func (s *Scheduler) key(t time.Time) string {
	return dateKey(t.In(s.loc))
}

// IsSlotAvailable reports whether datetime can host an appointment. excludeConfirmation
// names a booking to ignore, so a reschedule never conflicts with itself.
func (s *Scheduler) IsSlotAvailable(datetime, excludeConfirmation string) (bool, error) {
	start, err := ParseDateTime(datetime, s.loc)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pos, ok := s.lookupLocked(excludeConfirmation); ok {
		excludeConfirmation = s.records[pos].ConfirmationNumber
	}
	return s.slotAvailableLocked(start, excludeConfirmation), nil
}

func (s *Scheduler) slotAvailableLocked(start time.Time, excludeConfirmation string) bool {
	start = start.In(s.loc)
	if !s.withinOfficeHours(start) {
		return false
	}
	end := start.Add(s.duration)
	for _, pos := range s.byDate.around(start) {
		rec := s.records[pos]
		if rec.IsCancelled() {
			continue
		}
		if excludeConfirmation != "" && rec.ConfirmationNumber == excludeConfirmation {
			continue
		}
		if overlaps(start, end, rec.DatetimeISO, rec.DatetimeISO.Add(s.duration)) {
			return false
		}
	}
	return true
}

// withinOfficeHours allows a start exactly at opening and requires the whole
// appointment to finish no later than closing.
func (s *Scheduler) withinOfficeHours(start time.Time) bool {
	dh, open := s.hours.For(start.Weekday())
	if !open {
		return false
	}
	offset := sinceMidnight(start)
	openAt := time.Duration(dh.Open) * time.Minute
	closeAt := time.Duration(dh.Close) * time.Minute
	return offset >= openAt && offset+s.duration <= closeAt
}

// overlaps is the half-open interval test [aStart,aEnd) x [bStart,bEnd).
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
