package middleware

import (
	"context"
	"net/http"

	"habitlink/internal/logger"
	"habitlink/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// SessionUserKey is the session field holding the logged in user's id.
const SessionUserKey = "user_id"

type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

// AuthRequired sends visitors without a loaded user to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			if c.GetHeader("HX-Request") != "" {
				c.Header("HX-Redirect", "/login")
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser resolves the session's user and unread notification count into
// the context. A session pointing at a deleted user is cleared.
func LoadUser(users UserLoader, notifications UnreadCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := SessionUserID(session.Get(SessionUserKey))
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				session.Delete(SessionUserKey)
				_ = session.Save()
			} else {
				logger.Error("Failed to load session user", "user_id", userID, "error", err)
			}
			c.Next()
			return
		}
		c.Set(CheckUserKey, user)

		count, err := notifications.UnreadCount(ctx, user.ID)
		if err != nil {
			logger.Warn("Failed to count unread notifications", "user_id", user.ID, "error", err)
		}
		c.Set(UnreadCountKey, count)
		c.Next()
	}
}

// CurrentUser returns the user LoadUser stored, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentUserID is 0 for visitors.
func CurrentUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// SessionUserID accepts the integer types a cookie round trip can produce.
func SessionUserID(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case uint:
		return id, id > 0
	case int:
		return uint(id), id > 0
	case int64:
		return uint(id), id > 0
	case uint64:
		return uint(id), id > 0
	case float64:
		return uint(id), id > 0
	}
	return 0, false
}
