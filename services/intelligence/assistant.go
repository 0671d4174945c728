// File: services/intelligence/assistant.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"apptdesk/models"
	"apptdesk/services/booking"
	"apptdesk/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	chatEndpoint = "/api/chat"

	// slotsShownInReply caps how many free times are spelled out in a text reply.
	slotsShownInReply = 10

	apologyReply = "I'm sorry, I'm experiencing technical difficulties. Please try again in a moment."

	receptionistPrompt = `You are a friendly and helpful AI assistant for a dental practice.
Your role is to assist patients with booking, rescheduling, or canceling appointments.
Be warm, professional, and concise. Use emojis sparingly but appropriately.
Always confirm appointment details before finalizing.
Only offer appointment times listed in the context as available.
If you need information you don't have (like available slots), let the user know you're checking.`
)

// Assistant runs one conversational turn: extract intent, reply, then act on the booking engine.
type Assistant struct {
	bookings  booking.BookingService
	llm       LanguageModel
	extractor *IntentExtractor
	sessions  SessionStore
	recorder  EventRecorder
	reminders tasks.ReminderScheduler
	logger    *zap.Logger
}

type AssistantDeps struct {
	Bookings  booking.BookingService
	LLM       LanguageModel
	Sessions  SessionStore
	Recorder  EventRecorder           // optional
	Reminders tasks.ReminderScheduler // optional
	Logger    *zap.Logger
}

func NewAssistant(d AssistantDeps) *Assistant {
	a := &Assistant{
		bookings:  d.Bookings,
		llm:       d.LLM,
		extractor: NewIntentExtractor(d.LLM),
		sessions:  d.Sessions,
		recorder:  d.Recorder,
		reminders: d.Reminders,
		logger:    d.Logger,
	}
	if a.recorder == nil {
		a.recorder = nopRecorder{}
	}
	if a.reminders == nil {
		a.reminders = tasks.NoopReminders{}
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

// ProcessMessage handles one user utterance. A failed model call is reported in the
// response's Error field rather than as a Go error.
func (a *Assistant) ProcessMessage(ctx context.Context, sessionID, text string) (models.ChatResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatResponse{}, fmt.Errorf("%w: message is required", booking.ErrValidation)
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	logger := a.logger.With(zap.String("sessionID", sessionID))

	history, err := a.sessions.Load(ctx, sessionID)
	if err != nil {
		logger.Warn("Failed to load session history; starting fresh", zap.Error(err))
		history = nil
	}

	intent := a.extractor.Extract(ctx, text)
	resp := models.ChatResponse{SessionID: sessionID, ExtractedIntent: &intent}

	bctx := a.buildContext(intent)
	reply, err := a.llm.Chat(ctx, systemPrompt(bctx), history, text)
	if err != nil {
		logger.Error("Language model call failed", zap.Error(err))
		a.recorder.RecordError(chatEndpoint, err, text)
		resp.TextResponse = apologyReply
		resp.Error = err.Error()
		return resp, nil
	}

	history = append(history,
		models.ChatTurn{Role: "user", Content: text},
		models.ChatTurn{Role: "assistant", Content: reply},
	)
	if err := a.sessions.Save(ctx, sessionID, history); err != nil {
		logger.Warn("Failed to save session history", zap.Error(err))
	}

	switch {
	case intent.Intent == models.IntentBook && intent.HasCompleteBooking():
		reply = a.book(ctx, logger, intent, reply, &resp)
	case intent.Intent == models.IntentReschedule && intent.ConfirmationNumber != "":
		reply = a.reschedule(ctx, logger, intent, reply, &resp)
	case intent.Intent == models.IntentCancel && intent.ConfirmationNumber != "":
		reply = a.cancel(ctx, logger, intent, reply, &resp)
	}

	if intent.Intent == models.IntentBook && intent.Date != "" && resp.BookingInfo == nil {
		if slots, err := a.bookings.ListAvailableSlots(intent.Date, booking.SlotWindow{}); err == nil && len(slots) > 0 {
			resp.AvailableSlots = slots
			shown := slots[:min(len(slots), slotsShownInReply)]
			reply += fmt.Sprintf("\n\nAvailable times on %s: %s", intent.Date, strings.Join(shown, ", "))
		}
	}

	resp.TextResponse = reply
	return resp, nil
}

// ResetSession forgets a conversation's history.
func (a *Assistant) ResetSession(ctx context.Context, sessionID string) error {
	return a.sessions.Clear(ctx, sessionID)
}

func (a *Assistant) book(ctx context.Context, logger *zap.Logger, intent models.BookingIntent, reply string, resp *models.ChatResponse) string {
	appt, err := a.bookings.CreateBooking(ctx, booking.NewAppointment{
		PatientName: intent.PatientName,
		Phone:       intent.Phone,
		Email:       intent.Email,
		Datetime:    intent.Date + " " + intent.Time,
		Reason:      intent.Reason,
	})
	if err != nil {
		logger.Info("Booking from chat failed", zap.Error(err))
		return reply + "\n\n" + explainFailure(err)
	}

	resp.BookingInfo = &appt
	resp.BookingStatus = models.StatusConfirmed
	a.recorder.RecordBooking(appt)
	if err := a.reminders.Schedule(ctx, appt); err != nil {
		logger.Warn("Failed to schedule reminder", zap.String("confirmation", appt.ConfirmationNumber), zap.Error(err))
	}
	reply += fmt.Sprintf("\n\n✅ Your appointment is confirmed! Confirmation number: **%s**", appt.ConfirmationNumber)
	reply += fmt.Sprintf("\n📅 Date: %s", appt.AppointmentDatetime)
	return reply
}

func (a *Assistant) reschedule(ctx context.Context, logger *zap.Logger, intent models.BookingIntent, reply string, resp *models.ChatResponse) string {
	if intent.Date == "" || intent.Time == "" {
		return reply
	}
	datetime := intent.Date + " " + intent.Time
	appt, found, err := a.bookings.UpdateBooking(ctx, intent.ConfirmationNumber, booking.AppointmentChanges{Datetime: &datetime})
	switch {
	case !found:
		return reply + fmt.Sprintf("\n\nI couldn't find an appointment with confirmation number %s.", intent.ConfirmationNumber)
	case err != nil:
		logger.Info("Reschedule from chat failed", zap.Error(err))
		return reply + "\n\n" + explainFailure(err)
	}

	resp.BookingInfo = &appt
	resp.BookingStatus = "rescheduled"
	if err := a.reminders.Schedule(ctx, appt); err != nil {
		logger.Warn("Failed to reschedule reminder", zap.String("confirmation", appt.ConfirmationNumber), zap.Error(err))
	}
	return fmt.Sprintf("✅ Your appointment has been rescheduled to %s. Confirmation number: %s",
		appt.AppointmentDatetime, appt.ConfirmationNumber)
}

func (a *Assistant) cancel(ctx context.Context, logger *zap.Logger, intent models.BookingIntent, reply string, resp *models.ChatResponse) string {
	found, err := a.bookings.CancelBooking(ctx, intent.ConfirmationNumber)
	if err != nil {
		logger.Error("Cancel from chat failed", zap.Error(err))
		return reply + "\n\n" + explainFailure(err)
	}
	if !found {
		return reply + fmt.Sprintf("\n\nI couldn't find an appointment with confirmation number %s.", intent.ConfirmationNumber)
	}

	resp.BookingStatus = models.StatusCancelled
	if err := a.reminders.Cancel(ctx, intent.ConfirmationNumber); err != nil {
		logger.Warn("Failed to drop reminder", zap.String("confirmation", intent.ConfirmationNumber), zap.Error(err))
	}
	return "✅ Your appointment has been cancelled. Is there anything else I can help you with?"
}

// buildContext gathers what the model should know about the mentioned date and phone.
func (a *Assistant) buildContext(intent models.BookingIntent) models.BookingContext {
	var bctx models.BookingContext
	if intent.Date != "" {
		bctx.RequestedDate = intent.Date
		slots, err := a.bookings.ListAvailableSlots(intent.Date, booking.SlotWindow{})
		if err != nil {
			bctx.BookingError = err.Error()
		} else {
			bctx.AvailableSlots = slots
		}
	}
	if intent.Phone != "" {
		for _, b := range a.bookings.GetBookingsByPhone(intent.Phone) {
			bctx.ExistingBookings = append(bctx.ExistingBookings, models.BookingSummary{
				ConfirmationNumber: b.ConfirmationNumber,
				Datetime:           b.AppointmentDatetime,
				Status:             b.Status,
			})
		}
	}
	return bctx
}

func systemPrompt(bctx models.BookingContext) string {
	if bctx.RequestedDate == "" && len(bctx.ExistingBookings) == 0 {
		return receptionistPrompt
	}
	b, err := json.MarshalIndent(bctx, "", "  ")
	if err != nil {
		return receptionistPrompt
	}
	return receptionistPrompt + "\n\nAdditional context: " + string(b)
}

func explainFailure(err error) string {
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable):
		return "⚠️ Sorry, that time isn't available. Please pick another time."
	case errors.Is(err, booking.ErrValidation):
		return "⚠️ I couldn't use those details: " + strings.TrimPrefix(err.Error(), booking.ErrValidation.Error()+": ")
	default:
		return "⚠️ Something went wrong while saving your appointment. Please try again."
	}
}

