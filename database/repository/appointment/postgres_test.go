package appointmentRepo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"apptdesk/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresRepo runs against TEST_POSTGRES_URL inside a throwaway schema.
func newPostgresRepo(t *testing.T) (*PostgresAppointmentRepo, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	schema := fmt.Sprintf("appointments_test_%d", time.Now().UnixNano())
	quoted := pgx.Identifier{schema}.Sanitize()
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+quoted)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+quoted+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewPostgresAppointmentRepo(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo, pool
}

func TestPostgresAppointmentRepo_SaveEmpty(t *testing.T) {
	repo, _ := newPostgresRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, nil))
	require.NoError(t, repo.SaveAll(ctx, []models.Appointment{}))

	records, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestPostgresAppointmentRepo_NullOptionalFields(t *testing.T) {
	repo, pool := newPostgresRepo(t)
	ctx := context.Background()

	start := time.Date(2025, 12, 23, 10, 0, 0, 0, time.UTC)
	_, err := pool.Exec(ctx, `
		INSERT INTO appointments (id, confirmation_number, patient_name, phone, email,
			appointment_datetime, datetime_iso, reason, status, created_at, updated_at)
		VALUES (1, 'APT202512230001', 'Jane Doe', '555-0100', NULL, '2025-12-23 10:00', $1, NULL, 'confirmed', $1, $1)
	`, start)
	require.NoError(t, err)

	records, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Email)
	assert.Nil(t, records[0].Reason)
	assert.True(t, records[0].DatetimeISO.Equal(start))
}

func TestPostgresAppointmentRepo_UpsertsInIDOrder(t *testing.T) {
	repo, _ := newPostgresRepo(t)
	ctx := context.Background()

	start := time.Date(2025, 12, 23, 10, 0, 0, 0, time.UTC)
	email := "jane@example.com"
	records := []models.Appointment{
		{ID: 2, ConfirmationNumber: "APT202512230002", PatientName: "B", Phone: "2",
			AppointmentDatetime: "2025-12-23 11:00", DatetimeISO: start.Add(time.Hour),
			Status: models.StatusConfirmed, CreatedAt: start, UpdatedAt: start},
		{ID: 1, ConfirmationNumber: "APT202512230001", PatientName: "A", Phone: "1", Email: &email,
			AppointmentDatetime: "2025-12-23 10:00", DatetimeISO: start,
			Status: models.StatusConfirmed, CreatedAt: start, UpdatedAt: start},
	}
	require.NoError(t, repo.SaveAll(ctx, records))

	records[0].Status = models.StatusCancelled
	records[0].UpdatedAt = start.Add(time.Minute)
	require.NoError(t, repo.SaveAll(ctx, records))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].ID)
	require.NotNil(t, out[0].Email)
	assert.Equal(t, email, *out[0].Email)
	assert.Equal(t, models.StatusCancelled, out[1].Status)
	assert.True(t, out[1].UpdatedAt.Equal(start.Add(time.Minute)))
}
