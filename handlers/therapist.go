package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	therapistRepo "calmora/database/repository/therapist"
	"calmora/services/booking"
	"calmora/utils"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type TherapistHandler struct {
	Repo         therapistRepo.TherapistRepository
	Availability booking.AvailabilityService
}

func NewTherapistHandler(repo therapistRepo.TherapistRepository, availability booking.AvailabilityService) *TherapistHandler {
	return &TherapistHandler{Repo: repo, Availability: availability}
}

// List returns a paginated therapist page. Filters: topicIds (comma
// separated), modality, requireAll; ordering: name, experience or scarcity.
func (h *TherapistHandler) List(c *gin.Context) {
	filter := booking.ListFilter{
		Modality: c.Query("modality"),
		OrderBy:  c.DefaultQuery("orderBy", therapistRepo.OrderByScarcity),
		Limit:    defaultListLimit,
	}

	if raw := c.Query("topicIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.TopicIDs = append(filter.TopicIDs, id)
			}
		}
	}
	filter.RequireAll = c.Query("requireAll") == "true"

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			utils.JSONError(c, http.StatusBadRequest, "invalid limit", "limit must be between 1 and 100")
			return
		}
		filter.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.JSONError(c, http.StatusBadRequest, "invalid offset", "offset must be non-negative")
			return
		}
		filter.Offset = n
	}

	switch filter.OrderBy {
	case therapistRepo.OrderByName, therapistRepo.OrderByExperience, therapistRepo.OrderByScarcity:
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid orderBy", "orderBy must be one of: scarcity, name, experience")
		return
	}

	page, err := h.Availability.ListTherapists(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get returns a single therapist profile.
func (h *TherapistHandler) Get(c *gin.Context) {
	therapist, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, therapist)
}

// SessionTypes returns the bookable session types of a therapist.
func (h *TherapistHandler) SessionTypes(c *gin.Context) {
	therapist, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, therapist.SessionTypes)
}
