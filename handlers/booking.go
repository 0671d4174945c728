package handlers

import (
	"errors"
	"net/http"
	"strings"

	"apptdesk/models"
	"apptdesk/services/booking"
	"apptdesk/services/tasks"
	"apptdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	bookings  booking.BookingService
	reminders tasks.ReminderScheduler
	journal   Analyzer
	logger    *zap.Logger
}

// CreateBookingRequest is the body of POST /api/bookings.
type CreateBookingRequest struct {
	PatientName         string `json:"patient_name" binding:"required"`
	Phone               string `json:"phone" binding:"required"`
	Email               string `json:"email"`
	AppointmentDatetime string `json:"appointment_datetime" binding:"required"`
	Reason              string `json:"reason"`
	Status              string `json:"status"`
}

// UpdateBookingRequest is the body of PATCH /api/bookings/:confirmation. Omitted fields are left unchanged.
type UpdateBookingRequest struct {
	AppointmentDatetime *string `json:"appointment_datetime"`
	Reason              *string `json:"reason"`
	Status              *string `json:"status"`
}

// Availability lists free slot starts for ?date=YYYY-MM-DD, optionally narrowed by ?start=&end=.
func (h *BookingHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "date is required", "use ?date=YYYY-MM-DD")
		return
	}
	slots, err := h.bookings.ListAvailableSlots(date, booking.SlotWindow{Start: c.Query("start"), End: c.Query("end")})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "available_slots": slots})
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	switch {
	case c.Query("date") != "":
		appts, err := h.bookings.GetBookingsByDate(c.Query("date"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": appts})
	case c.Query("phone") != "":
		c.JSON(http.StatusOK, gin.H{"bookings": h.bookings.GetBookingsByPhone(c.Query("phone"))})
	default:
		utils.JSONError(c, http.StatusBadRequest, "a filter is required", "use ?date=YYYY-MM-DD or ?phone=")
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.bookings.CreateBooking(c.Request.Context(), booking.NewAppointment{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Email:       req.Email,
		Datetime:    req.AppointmentDatetime,
		Reason:      req.Reason,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.journal != nil {
		h.journal.RecordBooking(appt)
	}
	h.scheduleReminder(c, appt)
	c.JSON(http.StatusCreated, appt)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	confirmation := normalizeConfirmation(c.Param("confirmation"))
	appt, ok := h.bookings.GetBooking(confirmation)
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "booking not found", confirmation)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	confirmation := normalizeConfirmation(c.Param("confirmation"))
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, found, err := h.bookings.UpdateBooking(c.Request.Context(), confirmation, booking.AppointmentChanges{
		Datetime: req.AppointmentDatetime,
		Reason:   req.Reason,
		Status:   req.Status,
	})
	if !found {
		utils.JSONError(c, http.StatusNotFound, "booking not found", confirmation)
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.scheduleReminder(c, appt)
	c.JSON(http.StatusOK, appt)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	confirmation := normalizeConfirmation(c.Param("confirmation"))
	found, err := h.bookings.CancelBooking(c.Request.Context(), confirmation)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		utils.JSONError(c, http.StatusNotFound, "booking not found", confirmation)
		return
	}

	if err := h.reminders.Cancel(c.Request.Context(), confirmation); err != nil {
		getLogger(c, h.logger).Warn("Failed to drop reminder", zap.String("confirmation", confirmation), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"confirmation_number": confirmation, "status": models.StatusCancelled})
}

// scheduleReminder never fails the request; the booking is already stored.
func (h *BookingHandler) scheduleReminder(c *gin.Context, appt models.Appointment) {
	if err := h.reminders.Schedule(c.Request.Context(), appt); err != nil {
		getLogger(c, h.logger).Warn("Failed to schedule reminder",
			zap.String("confirmation", appt.ConfirmationNumber), zap.Error(err))
	}
}

func (h *BookingHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "invalid booking request", err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		utils.JSONError(c, http.StatusConflict, "time slot is not available", err.Error())
	default:
		getLogger(c, h.logger).Error("Booking operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		if h.journal != nil {
			h.journal.RecordError(c.FullPath(), err, "")
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to process booking", err.Error())
	}
}

func normalizeConfirmation(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
