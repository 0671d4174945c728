package appointmentRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"apptdesk/models"
)

// FileAppointmentRepo keeps all appointments in one JSON document on disk.
type FileAppointmentRepo struct {
	path string
	loc  *time.Location
}

// NewFileAppointmentRepo creates the parent directory of path if needed. Stored
// timestamps without a zone offset are read in loc (time.Local when nil).
func NewFileAppointmentRepo(path string, loc *time.Location) (*FileAppointmentRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &FileAppointmentRepo{path: path, loc: loc}, nil
}

// storedAppointment is the on-disk shape. Timestamps stay text until decoded because
// older files hold ISO 8601 values with no zone offset, e.g. "2025-12-23T10:00:00".
type storedAppointment struct {
	models.Appointment
	DatetimeISO *string `json:"datetime_iso"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

func (r *FileAppointmentRepo) parseStoredTime(field string, raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, *raw); err == nil {
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, *raw, r.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: unrecognised timestamp %q", field, *raw)
}

func (r *FileAppointmentRepo) decode(stored storedAppointment) (models.Appointment, error) {
	appt := stored.Appointment
	var err error
	if appt.DatetimeISO, err = r.parseStoredTime("datetime_iso", stored.DatetimeISO); err != nil {
		return appt, err
	}
	if appt.CreatedAt, err = r.parseStoredTime("created_at", stored.CreatedAt); err != nil {
		return appt, err
	}
	if appt.UpdatedAt, err = r.parseStoredTime("updated_at", stored.UpdatedAt); err != nil {
		return appt, err
	}
	return appt, nil
}

// LoadAll returns an empty list when the file does not exist yet.
func (r *FileAppointmentRepo) LoadAll(_ context.Context) ([]models.Appointment, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Appointment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	var stored []storedAppointment
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, r.path, err)
	}
	records := make([]models.Appointment, 0, len(stored))
	for i, rec := range stored {
		appt, err := r.decode(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %v", ErrCorruptStore, r.path, i, err)
		}
		records = append(records, appt)
	}
	return records, nil
}

// SaveAll writes to a temp file in the same directory, syncs it, then renames it over
// the store so a crash leaves either the old or the new document.
func (r *FileAppointmentRepo) SaveAll(_ context.Context, records []models.Appointment) error {
	if records == nil {
		records = []models.Appointment{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode appointments: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
