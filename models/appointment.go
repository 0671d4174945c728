package models

import "time"

// Appointment statuses.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

// Appointment is the single persistent record owned by the booking engine.
type Appointment struct {
	ID                  int       `bson:"id" json:"id"`                                   // sequence-assigned, never reused
	ConfirmationNumber  string    `bson:"confirmation_number" json:"confirmation_number"` // e.g. APT202512230001
	PatientName         string    `bson:"patient_name" json:"patient_name" validate:"required"`
	Phone               string    `bson:"phone" json:"phone" validate:"required"`
	Email               *string   `bson:"email" json:"email"`
	AppointmentDatetime string    `bson:"appointment_datetime" json:"appointment_datetime"` // caller's text, kept verbatim
	DatetimeISO         time.Time `bson:"datetime_iso" json:"datetime_iso"`                 // canonical instant used for comparisons
	Reason              *string   `bson:"reason" json:"reason"`
	Status              string    `bson:"status" json:"status" validate:"oneof=confirmed pending cancelled"`
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time `bson:"updated_at" json:"updated_at"`
}

// IsCancelled reports whether the appointment no longer occupies its slot.
func (a Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled:
		return true
	}
	return false
}
