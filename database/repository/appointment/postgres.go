package appointmentRepo

import (
	"context"
	"fmt"

	"apptdesk/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentsSchema = `
CREATE TABLE IF NOT EXISTS appointments (
	id                   INTEGER PRIMARY KEY,
	confirmation_number  TEXT NOT NULL UNIQUE,
	patient_name         TEXT NOT NULL,
	phone                TEXT NOT NULL,
	email                TEXT,
	appointment_datetime TEXT NOT NULL,
	datetime_iso         TIMESTAMPTZ NOT NULL,
	reason               TEXT,
	status               TEXT NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
)`

// PostgresAppointmentRepo rewrites every row inside one transaction.
type PostgresAppointmentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAppointmentRepo(pool *pgxpool.Pool) *PostgresAppointmentRepo {
	return &PostgresAppointmentRepo{pool: pool}
}

func (r *PostgresAppointmentRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, appointmentsSchema); err != nil {
		return fmt.Errorf("create appointments table: %w", err)
	}
	return nil
}

func (r *PostgresAppointmentRepo) LoadAll(ctx context.Context) ([]models.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, confirmation_number, patient_name, phone, email, appointment_datetime,
		       datetime_iso, reason, status, created_at, updated_at
		FROM appointments
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	records := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(
			&a.ID, &a.ConfirmationNumber, &a.PatientName, &a.Phone, &a.Email, &a.AppointmentDatetime,
			&a.DatetimeISO, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return records, nil
}

func (r *PostgresAppointmentRepo) SaveAll(ctx context.Context, records []models.Appointment) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, a := range records {
		batch.Queue(`
			INSERT INTO appointments (id, confirmation_number, patient_name, phone, email,
				appointment_datetime, datetime_iso, reason, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				appointment_datetime = EXCLUDED.appointment_datetime,
				datetime_iso = EXCLUDED.datetime_iso,
				reason = EXCLUDED.reason,
				status = EXCLUDED.status,
				updated_at = EXCLUDED.updated_at
		`, a.ID, a.ConfirmationNumber, a.PatientName, a.Phone, a.Email,
			a.AppointmentDatetime, a.DatetimeISO, a.Reason, a.Status, a.CreatedAt, a.UpdatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write appointments: %w", err)
	}
	return tx.Commit(ctx)
}
