package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/booking"
	"laundry-booking-backend/internal/model"
)

type createBookingRequest struct {
	MachineID int64  `json:"machine_id"`
	Date      string `json:"date"`
	Window    string `json:"window"`
	User      string `json:"user"`
}

func (r createBookingRequest) candidate() booking.Candidate {
	return booking.Candidate{
		MachineID: r.MachineID,
		Date:      r.Date,
		Window:    r.Window,
		User:      r.User,
	}
}

// bookingResponse is the flattened booking shape for the API, with the
// machine denormalized for display.
type bookingResponse struct {
	ID          int64             `json:"id"`
	MachineID   int64             `json:"machineId"`
	MachineName string            `json:"machineName"`
	MachineType model.MachineType `json:"machineType"`
	Date        string            `json:"date"`
	Window      string            `json:"window"`
	User        string            `json:"user"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		MachineID:   b.MachineID,
		MachineName: b.Machine.DisplayName,
		MachineType: b.Machine.Type,
		Date:        b.Date,
		Window:      b.Window,
		User:        b.UserName,
		CreatedAt:   b.CreatedAt,
	}
}

func rejectionBody(rej *booking.Rejection) gin.H {
	return gin.H{
		"error":    rej.Reason,
		"rule":     rej.Rule,
		"category": rej.Category,
	}
}

// PostBooking handles POST /api/bookings: run the rule pipeline and commit
// on acceptance.
func (h *Handler) PostBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	decision, err := h.engine.EvaluateAndCommit(c.Request.Context(), req.candidate())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "booking could not be processed"})
		return
	}

	if decision.Status != booking.StatusAccepted {
		c.AbortWithStatusJSON(statusForCategory(decision.Rejection.Category), rejectionBody(decision.Rejection))
		return
	}

	h.flushCache()
	c.JSON(http.StatusCreated, toBookingResponse(decision.Booking))
}

// ValidateBooking handles POST /api/bookings/validate: the dry-run entry
// point. It always answers 200 with the would-be verdict and never writes.
func (h *Handler) ValidateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rej, err := h.engine.Validate(c.Request.Context(), req.candidate())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "validation could not be processed"})
		return
	}

	if rej != nil {
		body := rejectionBody(rej)
		body["valid"] = false
		c.JSON(http.StatusOK, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// GetBookings handles GET /api/bookings?date=YYYY-MM-DD[&user=name].
func (h *Handler) GetBookings(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	var (
		bookings []model.Booking
		err      error
	)
	if user := c.Query("user"); user != "" {
		bookings, err = h.store.ListBookingsForUserOnDate(c.Request.Context(), user, date)
	} else {
		bookings, err = h.store.ListBookingsForDate(c.Request.Context(), date)
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve bookings"})
		return
	}

	responses := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, responses)
}

type cancelBookingRequest struct {
	User string `json:"user" binding:"required"`
}

// DeleteBooking handles DELETE /api/bookings/:id. Only the owner may cancel.
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user is required"})
		return
	}

	switch err := h.engine.Cancel(c.Request.Context(), id, req.User); {
	case err == nil:
		h.flushCache()
		c.Status(http.StatusNoContent)
	case errors.Is(err, booking.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only the booking owner may cancel it"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "cancellation could not be processed"})
	}
}
