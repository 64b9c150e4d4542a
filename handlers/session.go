package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"calmora/models"
	"calmora/services/booking"
	"calmora/utils"
)

type SessionHandler struct {
	Coordinator booking.ReservationCoordinator
	Lifecycle   booking.SessionLifecycle
}

func NewSessionHandler(coordinator booking.ReservationCoordinator, lifecycle booking.SessionLifecycle) *SessionHandler {
	return &SessionHandler{Coordinator: coordinator, Lifecycle: lifecycle}
}

// Create reserves a slot. The Idempotency-Key header makes retries safe:
// replaying the same key with the same payload returns the original session.
func (h *SessionHandler) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing Idempotency-Key header", "")
		return
	}

	session, err := h.Coordinator.ConfirmBooking(c.Request.Context(), req, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Get returns a session by id.
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.Lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// List returns a patient's sessions, most recent start first.
func (h *SessionHandler) List(c *gin.Context) {
	patientID := c.Query("patientId")
	if patientID == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing patientId", "patientId query parameter is required")
		return
	}

	sessions, err := h.Lifecycle.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// Cancel marks a session canceled, freeing its interval. Canceling an
// already-canceled session succeeds without changes.
func (h *SessionHandler) Cancel(c *gin.Context) {
	session, err := h.Lifecycle.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Confirm transitions a pending session to confirmed before its hold expires.
func (h *SessionHandler) Confirm(c *gin.Context) {
	session, err := h.Lifecycle.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
