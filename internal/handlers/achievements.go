package handlers

import (
	"net/http"

	"habitlink/internal/services"

	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	achievements *services.AchievementService
}

func NewAchievementHandler(achievements *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

func (h *AchievementHandler) Show(c *gin.Context) {
	view, err := h.achievements.ForUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	Render(c, http.StatusOK, "achievements/index.html", gin.H{
		"Title":    "Achievements",
		"View":     view,
		"Progress": view.Progress,
	})
}
