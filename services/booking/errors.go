package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrSlotUnavailable marks a closed or already occupied slot.
	ErrSlotUnavailable = errors.New("time slot is not available")
)

// SlotError is returned when a requested time cannot host an appointment.
type SlotError struct {
	Datetime string
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("time slot %s is not available", e.Datetime)
}

func (e *SlotError) Is(target error) bool {
	return target == ErrSlotUnavailable
}

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
