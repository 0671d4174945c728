package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"apptdesk/models"
	"apptdesk/services/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers extraction prompts with extraction and everything else with reply.
type scriptedLLM struct {
	mu         sync.Mutex
	extraction string
	extractErr error
	reply      string
	replyErr   error
	systems    []string
	histories  [][]models.ChatTurn
}

func (l *scriptedLLM) Chat(_ context.Context, system string, history []models.ChatTurn, _ string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if system == extractionPrompt {
		return l.extraction, l.extractErr
	}
	l.systems = append(l.systems, system)
	l.histories = append(l.histories, history)
	return l.reply, l.replyErr
}

type nullRepo struct{}

func (nullRepo) LoadAll(context.Context) ([]models.Appointment, error)   { return nil, nil }
func (nullRepo) SaveAll(context.Context, []models.Appointment) error     { return nil }

type recorder struct {
	errs     []string
	bookings []string
}

func (r *recorder) RecordError(_ string, err error, _ string) { r.errs = append(r.errs, err.Error()) }
func (r *recorder) RecordBooking(a models.Appointment)        { r.bookings = append(r.bookings, a.ConfirmationNumber) }

type reminderSpy struct {
	scheduled []string
	cancelled []string
}

func (s *reminderSpy) Schedule(_ context.Context, a models.Appointment) error {
	s.scheduled = append(s.scheduled, a.ConfirmationNumber)
	return nil
}

func (s *reminderSpy) Cancel(_ context.Context, c string) error {
	s.cancelled = append(s.cancelled, c)
	return nil
}

type fixture struct {
	assistant *Assistant
	llm       *scriptedLLM
	scheduler *booking.Scheduler
	recorder  *recorder
	reminders *reminderSpy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		llm:       &scriptedLLM{reply: "Happy to help!"},
		recorder:  &recorder{},
		reminders: &reminderSpy{},
	}
	f.scheduler = booking.NewScheduler(context.Background(), nullRepo{}, booking.Config{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC) },
	}, nil)
	f.assistant = NewAssistant(AssistantDeps{
		Bookings:  f.scheduler,
		LLM:       f.llm,
		Sessions:  NewMemorySessionStore(time.Hour),
		Recorder:  f.recorder,
		Reminders: f.reminders,
	})
	return f
}

func TestProcessMessage_BooksCompleteRequest(t *testing.T) {
	f := newFixture(t)
	f.llm.extraction = `{"intent":"book","date":"2025-12-23","time":"10:00","patient_name":"Jane Doe","phone":"555-0100","reason":"cleaning"}`

	resp, err := f.assistant.ProcessMessage(context.Background(), "s1", "Book Jane Doe 555-0100 on Dec 23 at 10")
	require.NoError(t, err)

	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, models.StatusConfirmed, resp.BookingStatus)
	require.NotNil(t, resp.BookingInfo)
	assert.Equal(t, "APT202512230001", resp.BookingInfo.ConfirmationNumber)
	assert.Contains(t, resp.TextResponse, "Happy to help!")
	assert.Contains(t, resp.TextResponse, "APT202512230001")
	assert.Empty(t, resp.AvailableSlots)
	assert.Equal(t, []string{"APT202512230001"}, f.recorder.bookings)
	assert.Equal(t, []string{"APT202512230001"}, f.reminders.scheduled)

	// The model saw the requested date's availability.
	require.Len(t, f.llm.systems, 1)
	assert.Contains(t, f.llm.systems[0], `"requested_date": "2025-12-23"`)
}

func TestProcessMessage_ConflictOffersSlots(t *testing.T) {
	f := newFixture(t)
	_, err := f.scheduler.CreateBooking(context.Background(), booking.NewAppointment{
		PatientName: "First", Phone: "1", Datetime: "2025-12-23 10:00",
	})
	require.NoError(t, err)

	f.llm.extraction = `{"intent":"book","date":"2025-12-23","time":"10:00","patient_name":"Jane","phone":"555"}`
	resp, err := f.assistant.ProcessMessage(context.Background(), "s1", "book me at 10")
	require.NoError(t, err)

	assert.Nil(t, resp.BookingInfo)
	assert.Empty(t, resp.BookingStatus)
	assert.Contains(t, resp.TextResponse, "isn't available")
	assert.Contains(t, resp.TextResponse, "Available times on 2025-12-23: 09:00, 09:30, 10:30")
	assert.Len(t, resp.AvailableSlots, 15)
	assert.NotContains(t, resp.AvailableSlots, "10:00")
}

func TestProcessMessage_PartialBookShowsFirstTenSlots(t *testing.T) {
	f := newFixture(t)
	f.llm.extraction = "```json\n{\"intent\":\"book\",\"date\":\"2025-12-23\"}\n```"

	resp, err := f.assistant.ProcessMessage(context.Background(), "s1", "anything on the 23rd?")
	require.NoError(t, err)

	assert.Len(t, resp.AvailableSlots, 16)
	idx := strings.Index(resp.TextResponse, "Available times on 2025-12-23: ")
	require.GreaterOrEqual(t, idx, 0)
	listed := strings.Split(resp.TextResponse[idx+len("Available times on 2025-12-23: "):], ", ")
	assert.Len(t, listed, 10)
	assert.Equal(t, "13:30", listed[9])
}

func TestProcessMessage_RescheduleAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, err := f.scheduler.CreateBooking(ctx, booking.NewAppointment{
		PatientName: "Jane", Phone: "555", Datetime: "2025-12-23 10:00",
	})
	require.NoError(t, err)

	f.llm.extraction = `{"intent":"reschedule","confirmation_number":"apt202512230001","date":"2025-12-24","time":"11:00"}`
	resp, err := f.assistant.ProcessMessage(ctx, "s1", "move it to wednesday 11")
	require.NoError(t, err)
	assert.Equal(t, "rescheduled", resp.BookingStatus)
	require.NotNil(t, resp.BookingInfo)
	assert.Equal(t, "2025-12-24 11:00", resp.BookingInfo.AppointmentDatetime)
	assert.True(t, strings.HasPrefix(resp.TextResponse, "✅ Your appointment has been rescheduled"))

	f.llm.extraction = `{"intent":"cancel","confirmation_number":"APT202512230001"}`
	resp, err = f.assistant.ProcessMessage(ctx, "s1", "cancel it please")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, resp.BookingStatus)
	assert.Equal(t, []string{appt.ConfirmationNumber}, f.reminders.cancelled)

	got, ok := f.scheduler.GetBooking(appt.ConfirmationNumber)
	require.True(t, ok)
	assert.True(t, got.IsCancelled())
}

func TestProcessMessage_UnknownConfirmation(t *testing.T) {
	f := newFixture(t)
	f.llm.extraction = `{"intent":"cancel","confirmation_number":"APT209901010001"}`

	resp, err := f.assistant.ProcessMessage(context.Background(), "s1", "cancel APT209901010001")
	require.NoError(t, err)
	assert.Empty(t, resp.BookingStatus)
	assert.Contains(t, resp.TextResponse, "couldn't find an appointment")
	assert.Empty(t, f.reminders.cancelled)
}

func TestProcessMessage_ModelFailureApologises(t *testing.T) {
	f := newFixture(t)
	f.llm.extraction = `{"intent":"inquiry"}`
	f.llm.replyErr = errors.New("AI chat processing failed: connection reset")

	resp, err := f.assistant.ProcessMessage(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, apologyReply, resp.TextResponse)
	assert.Equal(t, "AI chat processing failed: connection reset", resp.Error)
	assert.Len(t, f.recorder.errs, 1)

	// Nothing was appended to the session.
	turns, err := f.assistant.sessions.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestProcessMessage_HistoryAndReset(t *testing.T) {
	f := newFixture(t)
	f.llm.extraction = `{"intent":"inquiry"}`
	ctx := context.Background()

	resp, err := f.assistant.ProcessMessage(ctx, "", "hi")
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	sessionID := resp.SessionID

	_, err = f.assistant.ProcessMessage(ctx, sessionID, "what are your hours?")
	require.NoError(t, err)
	require.Len(t, f.llm.histories, 2)
	assert.Empty(t, f.llm.histories[0])
	assert.Equal(t, []models.ChatTurn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "Happy to help!"},
	}, f.llm.histories[1])

	require.NoError(t, f.assistant.ResetSession(ctx, sessionID))
	turns, err := f.assistant.sessions.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestProcessMessage_EmptyMessage(t *testing.T) {
	f := newFixture(t)
	_, err := f.assistant.ProcessMessage(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, booking.ErrValidation)
}
