package tasks

import (
	"encoding/json"
	"testing"
	"time"

	"apptdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReminderTask(t *testing.T) {
	email := "jane@example.com"
	start := time.Date(2025, 12, 23, 10, 0, 0, 0, time.UTC)
	appt := models.Appointment{
		ConfirmationNumber: "APT202512230001",
		PatientName:        "Jane Doe",
		Phone:              "555-0100",
		Email:              &email,
		DatetimeISO:        start,
	}

	task, opts, err := NewReminderTask(PayloadFor(appt), start.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TypeAppointmentReminder, task.Type())
	assert.Len(t, opts, 4)

	var p models.ReminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "APT202512230001", p.ConfirmationNumber)
	assert.Equal(t, email, p.Email)
	assert.True(t, p.AppointmentAt.Equal(start))
}

func TestReminderTaskID(t *testing.T) {
	assert.Equal(t, "reminder:APT202512230001", ReminderTaskID("APT202512230001"))
}
