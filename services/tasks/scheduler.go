package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apptdesk/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderScheduler keeps one pending reminder per active appointment.
type ReminderScheduler interface {
	Schedule(ctx context.Context, appt models.Appointment) error
	Cancel(ctx context.Context, confirmation string) error
}

// NoopReminders is used when reminders are disabled.
type NoopReminders struct{}

func (NoopReminders) Schedule(context.Context, models.Appointment) error { return nil }
func (NoopReminders) Cancel(context.Context, string) error              { return nil }

type AsynqReminders struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	lead      time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewAsynqReminders(opt asynq.RedisClientOpt, lead time.Duration, logger *zap.Logger) *AsynqReminders {
	return &AsynqReminders{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		lead:      lead,
		now:       time.Now,
		logger:    logger,
	}
}

// Schedule replaces any pending reminder for the appointment. Cancelled
// appointments and reminders whose fire time has already passed are not queued.
func (r *AsynqReminders) Schedule(ctx context.Context, appt models.Appointment) error {
	if err := r.Cancel(ctx, appt.ConfirmationNumber); err != nil {
		return err
	}
	if appt.IsCancelled() {
		return nil
	}
	fireAt := appt.DatetimeISO.Add(-r.lead)
	if !fireAt.After(r.now()) {
		r.logger.Debug("Reminder time already passed; skipping",
			zap.String("confirmation", appt.ConfirmationNumber))
		return nil
	}

	task, opts, err := NewReminderTask(PayloadFor(appt), fireAt)
	if err != nil {
		return err
	}
	info, err := r.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	r.logger.Info("Reminder scheduled",
		zap.String("confirmation", appt.ConfirmationNumber),
		zap.String("taskID", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}

func (r *AsynqReminders) Cancel(_ context.Context, confirmation string) error {
	err := r.inspector.DeleteTask(ReminderQueue, ReminderTaskID(confirmation))
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return fmt.Errorf("delete reminder: %w", err)
}

func (r *AsynqReminders) Close() error {
	return errors.Join(r.client.Close(), r.inspector.Close())
}
