package cron

import (
	"context"
	"errors"
	"testing"

	"apptdesk/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleReminderTask(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := HandleReminderTask(zap.New(core))

	payload := []byte(`{"confirmation_number":"APT202512230001","patient_name":"Jane","phone":"555","appointment_at":"2025-12-23T10:00:00Z"}`)
	err := handler(context.Background(), asynq.NewTask(tasks.TypeAppointmentReminder, payload))
	assert.NoError(t, err)
	entries := logs.FilterMessage("Appointment reminder due").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "APT202512230001", entries[0].ContextMap()["confirmation"])
	}
}

func TestHandleReminderTask_BadPayloadSkipsRetry(t *testing.T) {
	handler := HandleReminderTask(zap.NewNop())
	err := handler(context.Background(), asynq.NewTask(tasks.TypeAppointmentReminder, []byte("nope")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
