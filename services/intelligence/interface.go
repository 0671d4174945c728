// File: services/intelligence/interface.go
package ai

import (
	"context"

	"apptdesk/models"
)

// LanguageModel is a chat-capable text model.
type LanguageModel interface {
	Chat(ctx context.Context, system string, history []models.ChatTurn, message string) (string, error)
}

// SessionStore keeps per-session conversation history.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) ([]models.ChatTurn, error)
	Save(ctx context.Context, sessionID string, turns []models.ChatTurn) error
	Clear(ctx context.Context, sessionID string) error
}

// EventRecorder receives failures and completed bookings for later analysis.
type EventRecorder interface {
	RecordError(endpoint string, err error, message string)
	RecordBooking(appt models.Appointment)
}

type nopRecorder struct{}

func (nopRecorder) RecordError(string, error, string) {}
func (nopRecorder) RecordBooking(models.Appointment)  {}
