package handlers

import (
	"net/http"

	"habitlink/internal/repository"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications repository.NotificationRepository
}

func NewNotificationHandler(notifications repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notifications.List(c.Request.Context(), currentUser(c).ID, 50)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	Render(c, http.StatusOK, "notification/list.html", gin.H{
		"Title":         "Notifications",
		"Notifications": notifications,
		"Active":        "notifications",
	})
}

// Read marks one notification read. HTMX swaps the row client side.
func (h *NotificationHandler) Read(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id, currentUser(c).ID); err != nil {
		JSONResult(c, err, "", nil)
		return
	}
	c.Status(http.StatusOK)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		JSONResult(c, err, "", nil)
		return
	}
	c.Status(http.StatusOK)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), currentUser(c).ID); err != nil {
		flashError(c, err)
	}
	c.Redirect(http.StatusFound, "/notifications")
}
