package handlers

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	themeCookie       = "theme"
	colorSchemeCookie = "color_scheme"
	cookieMaxAge      = 365 * 24 * 3600
)

func cookieOr(c *gin.Context, name, fallback string) string {
	if v, err := c.Cookie(name); err == nil && v != "" {
		return v
	}
	return fallback
}

func setPreferenceCookie(c *gin.Context, name, value string) {
	c.SetCookie(name, value, cookieMaxAge, "/", "", false, false)
}

// localPath returns the path and query of ref when it points inside this site.
func localPath(ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "", false
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery, true
	}
	return u.Path, true
}

// wantsJSON is true for fetch calls that asked for a JSON reply.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
