package models

// Intent kinds produced by the intent extractor.
const (
	IntentBook       = "book"
	IntentReschedule = "reschedule"
	IntentCancel     = "cancel"
	IntentInquiry    = "inquiry"
	IntentUnknown    = "unknown"
)

// BookingIntent is the structure the extractor pulls out of a free-form utterance.
type BookingIntent struct {
	Intent             string `json:"intent"`
	Date               string `json:"date,omitempty"` // YYYY-MM-DD
	Time               string `json:"time,omitempty"` // HH:MM
	PatientName        string `json:"patient_name,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Email              string `json:"email,omitempty"`
	Reason             string `json:"reason,omitempty"`
	ConfirmationNumber string `json:"confirmation_number,omitempty"`
	Error              string `json:"error,omitempty"`
}

// HasCompleteBooking reports whether enough was extracted to create a booking.
func (i BookingIntent) HasCompleteBooking() bool {
	return i.PatientName != "" && i.Phone != "" && i.Date != "" && i.Time != ""
}

// ChatTurn is one message in a conversation history.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload coming from the frontend into /api/chat.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse is what the assistant returns for every processed utterance.
type ChatResponse struct {
	SessionID       string         `json:"session_id"`
	Transcript      string         `json:"transcript,omitempty"` // voice requests only
	TextResponse    string         `json:"text_response"`
	BookingStatus   string         `json:"booking_status,omitempty"` // confirmed, rescheduled, cancelled
	BookingInfo     *Appointment   `json:"booking_info,omitempty"`
	AvailableSlots  []string       `json:"available_slots,omitempty"`
	ExtractedIntent *BookingIntent `json:"extracted_intent,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// BookingContext is the extra context handed to the language model alongside the user's message.
type BookingContext struct {
	RequestedDate    string           `json:"requested_date,omitempty"`
	AvailableSlots   []string         `json:"available_slots,omitempty"`
	ExistingBookings []BookingSummary `json:"existing_bookings,omitempty"`
	BookingError     string           `json:"booking_error,omitempty"`
}

type BookingSummary struct {
	ConfirmationNumber string `json:"confirmation_number"`
	Datetime           string `json:"datetime"`
	Status             string `json:"status"`
}
