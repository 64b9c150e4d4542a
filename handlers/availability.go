package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"calmora/services/booking"
	"calmora/utils"
)

type AvailabilityHandler struct {
	Availability booking.AvailabilityService
}

func NewAvailabilityHandler(availability booking.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Availability: availability}
}

// Week returns the 7-day bookable grid for a therapist and session type,
// rendered in the patient's timezone. weekStart defaults to today.
func (h *AvailabilityHandler) Week(c *gin.Context) {
	therapistID := c.Param("id")

	sessionTypeID := c.Query("sessionTypeId")
	if sessionTypeID == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing sessionTypeId", "sessionTypeId query parameter is required")
		return
	}

	patientTz := c.DefaultQuery("patientTz", "UTC")

	// Zero means "patient's today"; the service resolves it in patientTz.
	var weekStart time.Time
	if raw := c.Query("weekStart"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid weekStart", "weekStart must be formatted as YYYY-MM-DD")
			return
		}
		weekStart = parsed
	}

	stepMin := 0
	if raw := c.Query("stepMin"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.JSONError(c, http.StatusBadRequest, "invalid stepMin", "stepMin must be a positive number of minutes")
			return
		}
		stepMin = n
	}

	days, err := h.Availability.WeekAvailability(c.Request.Context(), therapistID, sessionTypeID, weekStart, patientTz, stepMin)
	if err != nil {
		respondError(c, err)
		return
	}

	// The first bucket carries the resolved week start, defaulted or not.
	resolvedStart := weekStart.Format("2006-01-02")
	if weekStart.IsZero() && len(days) > 0 {
		resolvedStart = days[0].Date
	}
	c.JSON(http.StatusOK, gin.H{
		"therapistId":   therapistID,
		"sessionTypeId": sessionTypeID,
		"weekStart":     resolvedStart,
		"patientTz":     patientTz,
		"days":          days,
	})
}
