package handlers

import (
	"net/http"

	"habitlink/internal/logger"
	"habitlink/internal/middleware"
	"habitlink/internal/models"
	"habitlink/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			obj["UnreadCount"] = int(count.(int64))
		} else {
			obj["UnreadCount"] = 0
		}
	}

	obj["CurrentPath"] = c.Request.URL.Path
	obj["Theme"] = cookieOr(c, themeCookie, "light")
	obj["ColorScheme"] = cookieOr(c, colorSchemeCookie, "default")
	if _, ok := obj["Flashes"]; !ok {
		obj["Flashes"] = takeFlashes(c)
	}

	c.HTML(code, name, obj)
}

// HTMX Redirect helper
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": http.StatusText(code), "Error": message})
}

// RenderAppError renders err with the status its code maps to.
func RenderAppError(c *gin.Context, err error) {
	if models.ErrorCode(err) == models.CodeInternal {
		logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	RenderError(c, models.StatusFor(err), models.PublicMessage(err))
}

// JSONResult answers an action with the {"success","message"} shape.
func JSONResult(c *gin.Context, err error, message string, data interface{}) {
	if err != nil {
		if models.ErrorCode(err) == models.CodeInternal {
			logger.Error("Action failed", "path", c.Request.URL.Path, "error", err)
		}
		c.JSON(models.StatusFor(err), models.Fail(err))
		return
	}
	c.JSON(http.StatusOK, models.OK(message, data))
}

// redirectBack sends the browser to the Referer when it is local, else fallback.
func redirectBack(c *gin.Context, fallback string) {
	target := fallback
	if ref := c.GetHeader("Referer"); ref != "" {
		if u, ok := localPath(ref); ok {
			target = u
		}
	}
	if c.GetHeader("HX-Request") != "" {
		HtmxRedirect(c, target)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func flash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(kind + "|" + message)
	if err := session.Save(); err != nil {
		logger.Warn("Failed to save flash", "error", err)
	}
}

// flashError stores the public message of err as an error flash.
func flashError(c *gin.Context, err error) {
	if models.ErrorCode(err) == models.CodeInternal {
		logger.Error("Action failed", "path", c.Request.URL.Path, "error", err)
	}
	flash(c, "danger", models.PublicMessage(err))
}

type Flash struct {
	Kind    string
	Message string
}

func takeFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()

	out := make([]Flash, 0, len(raw))
	for _, r := range raw {
		s, ok := r.(string)
		if !ok {
			continue
		}
		kind, message := "info", s
		for i := 0; i < len(s); i++ {
			if s[i] == '|' {
				kind, message = s[:i], s[i+1:]
				break
			}
		}
		out = append(out, Flash{Kind: kind, Message: message})
	}
	return out
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// idParam reads a positive id path parameter, rendering 404 when it is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
	}
	return id, ok
}

var errBadID = models.NewValidationError("Invalid id")
