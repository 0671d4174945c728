package tasks

import (
	"apptdesk/models"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeAppointmentReminder = "appointment:reminder"

// ReminderQueue is the asynq queue reminders are enqueued on.
const ReminderQueue = "default"

// ReminderTaskID is the deterministic task id for a booking's reminder, so a
// reschedule or cancel can find and replace it.
func ReminderTaskID(confirmation string) string {
	return "reminder:" + confirmation
}

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload.ConfirmationNumber)),
		asynq.Queue(ReminderQueue),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// PayloadFor builds the reminder payload for an appointment.
func PayloadFor(appt models.Appointment) models.ReminderPayload {
	p := models.ReminderPayload{
		ConfirmationNumber: appt.ConfirmationNumber,
		PatientName:        appt.PatientName,
		Phone:              appt.Phone,
		AppointmentAt:      appt.DatetimeISO,
	}
	if appt.Email != nil {
		p.Email = *appt.Email
	}
	return p
}
