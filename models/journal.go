package models

import "time"

// Journal entry types.
const (
	EntryError             = "error"
	EntrySuccessfulBooking = "successful_booking"
)

// JournalEntry is one line of the diagnostics journal.
type JournalEntry struct {
	Type      string    `json:"type"`
	Endpoint  string    `json:"endpoint,omitempty"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"` // truncated user utterance
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorPattern groups journal errors by a coarse category.
type ErrorPattern struct {
	Type       string `json:"type"`
	Count      int    `json:"count"`
	Suggestion string `json:"suggestion"`
}

// ErrorAnalysis summarises the journal over a time window.
type ErrorAnalysis struct {
	TotalErrors    int            `json:"total_errors"`
	ErrorTypes     map[string]int `json:"error_types,omitempty"`
	CommonPatterns []ErrorPattern `json:"common_patterns,omitempty"`
	RecentErrors   []JournalEntry `json:"recent_errors,omitempty"`
}

// ReminderPayload is the asynq task body for an appointment reminder.
type ReminderPayload struct {
	ConfirmationNumber string    `json:"confirmation_number"`
	PatientName        string    `json:"patient_name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email,omitempty"`
	AppointmentAt      time.Time `json:"appointment_at"`
}
