package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// GetMachines handles GET /api/machines.
func (h *Handler) GetMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, machines)
}

type createMachineRequest struct {
	DisplayName string            `json:"display_name" binding:"required"`
	Type        model.MachineType `json:"type" binding:"required"`
}

// PostMachine handles POST /api/machines (administrative).
func (h *Handler) PostMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "display_name and type are required"})
		return
	}
	if !req.Type.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "type must be one of washer, dryer, tumbler"})
		return
	}

	machine := model.Machine{
		DisplayName: req.DisplayName,
		Type:        req.Type,
	}
	if err := h.store.CreateMachine(c.Request.Context(), &machine); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create machine"})
		return
	}

	h.flushCache()
	c.JSON(http.StatusCreated, machine)
}

// DeleteMachine handles DELETE /api/machines/:id (administrative). The
// cascade also removes the machine's bookings.
func (h *Handler) DeleteMachine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid machine id"})
		return
	}

	switch err := h.store.DeleteMachine(c.Request.Context(), id); {
	case err == nil:
		h.flushCache()
		c.Status(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "machine not found"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to delete machine"})
	}
}

// GetWindows handles GET /api/windows: the configured booking windows in
// chronological order, plus the blackout weekday.
func (h *Handler) GetWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows":          h.cfg.Booking.Windows,
		"blackout_weekday": h.cfg.Booking.Blackout.String(),
	})
}
