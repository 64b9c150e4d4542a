package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	topicRepo "calmora/database/repository/topic"
	"calmora/utils"
)

type TopicHandler struct {
	Repo topicRepo.TopicRepository
}

func NewTopicHandler(repo topicRepo.TopicRepository) *TopicHandler {
	return &TopicHandler{Repo: repo}
}

// List returns the full topic catalog, sorted by name.
func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.Repo.ListAll(c.Request.Context())
	if err != nil {
		utils.GetLogger().Error("failed to list topics", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "")
		return
	}
	c.JSON(http.StatusOK, topics)
}
