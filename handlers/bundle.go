// File: apptdesk/handlers/bundle.go
package handlers

import (
	"context"

	"apptdesk/models"
	"apptdesk/services/booking"
	"apptdesk/services/diagnostics"
	"apptdesk/services/speech"
	"apptdesk/services/tasks"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatAssistant is the conversational surface the chat and voice endpoints drive.
type ChatAssistant interface {
	ProcessMessage(ctx context.Context, sessionID, text string) (models.ChatResponse, error)
	ResetSession(ctx context.Context, sessionID string) error
}

// Analyzer summarises the diagnostics journal.
type Analyzer interface {
	Analyze(days int) (models.ErrorAnalysis, error)
	Health() diagnostics.HealthSummary
	RecordError(endpoint string, err error, message string)
	RecordBooking(appt models.Appointment)
}

// Deps are the services handlers are built from. Assistant and Transcriber may be
// nil when the language model or speech credentials are not configured.
type Deps struct {
	Bookings       booking.BookingService
	Assistant      ChatAssistant
	Transcriber    speech.Transcriber
	Journal        Analyzer
	Reminders      tasks.ReminderScheduler
	SpeechLanguage string
	Logger         *zap.Logger
}

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	Health gin.HandlerFunc

	// Conversational endpoints
	ChatHandler         gin.HandlerFunc
	ResetSessionHandler gin.HandlerFunc
	VoiceHandler        gin.HandlerFunc

	// Booking endpoints
	AvailabilityHandler  gin.HandlerFunc
	ListBookingsHandler  gin.HandlerFunc
	CreateBookingHandler gin.HandlerFunc
	GetBookingHandler    gin.HandlerFunc
	UpdateBookingHandler gin.HandlerFunc
	CancelBookingHandler gin.HandlerFunc

	// Staff endpoints
	DiagnosticsHandler gin.HandlerFunc
}

func NewHandlerBundle(d Deps) *HandlerBundle {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Reminders == nil {
		d.Reminders = tasks.NoopReminders{}
	}
	bh := &BookingHandler{bookings: d.Bookings, reminders: d.Reminders, journal: d.Journal, logger: d.Logger}
	ch := &ChatHandler{
		assistant:   d.Assistant,
		transcriber: d.Transcriber,
		journal:     d.Journal,
		language:    d.SpeechLanguage,
		prepare:     speech.PrepareAudio,
		logger:      d.Logger,
	}
	return &HandlerBundle{
		Health:               HealthHandler(d.Journal),
		ChatHandler:          ch.Chat,
		ResetSessionHandler:  ch.ResetSession,
		VoiceHandler:         ch.Voice,
		AvailabilityHandler:  bh.Availability,
		ListBookingsHandler:  bh.ListBookings,
		CreateBookingHandler: bh.CreateBooking,
		GetBookingHandler:    bh.GetBooking,
		UpdateBookingHandler: bh.UpdateBooking,
		CancelBookingHandler: bh.CancelBooking,
		DiagnosticsHandler:   DiagnosticsHandler(d.Journal),
	}
}
