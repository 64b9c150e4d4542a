package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ledgerRepo "calmora/database/repository/ledger"
	therapistRepo "calmora/database/repository/therapist"
	"calmora/services/booking"
	"calmora/utils"
)

// respondError maps engine errors onto the HTTP boundary. This is the only
// place the error taxonomy becomes status codes.
func respondError(c *gin.Context, err error) {
	if be, ok := booking.AsBookingError(err); ok {
		switch be.Code {
		case booking.CodeSlotTaken, booking.CodeKeyInUse:
			utils.JSONErrorCode(c, http.StatusConflict, be.Code, be.Message)
		case booking.CodeOutOfWindow, booking.CodeKeyReused:
			utils.JSONErrorCode(c, http.StatusUnprocessableEntity, be.Code, be.Message)
		case booking.CodeTooLateToCancel:
			utils.JSONErrorCode(c, http.StatusConflict, be.Code, be.Message)
		default:
			// invalid_schedule and anything unrecognized is an integrity
			// problem, not a user mistake.
			utils.JSONErrorCode(c, http.StatusInternalServerError, be.Code, "internal error")
		}
		return
	}

	switch {
	case errors.Is(err, booking.ErrInvalidRequest):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, therapistRepo.ErrTherapistNotFound):
		utils.JSONError(c, http.StatusNotFound, "therapist not found", "")
	case errors.Is(err, ledgerRepo.ErrSessionNotFound):
		utils.JSONError(c, http.StatusNotFound, "session not found", "")
	case errors.Is(err, ledgerRepo.ErrNotPending):
		utils.JSONError(c, http.StatusConflict, "session is not pending", "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "")
	}
}
