package router

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"time"

	"habitlink/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// views are registered under the name handlers pass to Render.
var views = []string{
	"home.html",
	"error.html",
	"auth/login.html",
	"auth/register.html",
	"dashboard/overview.html",
	"dashboard/xp.html",
	"journal/list.html",
	"achievements/index.html",
	"community/index.html",
	"community/requests.html",
	"community/profile.html",
	"community/leaderboard.html",
	"notification/list.html",
	"settings/index.html",
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	s := int(time.Since(t).Seconds())
	switch {
	case s < 60:
		return "just now"
	case s < 3600:
		return plural(s/60, "minute")
	case s < 86400:
		return plural(s/3600, "hour")
	case s < 2592000:
		return plural(s/86400, "day")
	case s < 31536000:
		return plural(s/2592000, "month")
	}
	return plural(s/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FuncMap is shared by every page template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add":      func(a, b int) int { return a + b },
		"timeAgo":  timeAgo,
		"eq":       func(a, b interface{}) bool { return a == b },
		"gt":       func(a, b int) bool { return a > b },
		"markdown": utils.RenderMarkdown,
		"excerpt":  utils.Excerpt,
		"urlquery": url.QueryEscape,
		"date":     func(t time.Time) string { return t.Format("Jan 2, 2006") },
	}
}

// LoadTemplates builds one template set per view: layouts, includes and
// components from templatesDir plus the view itself.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	var shared []string
	for _, dir := range []string{"layouts", "includes", "components"} {
		files, err := filepath.Glob(filepath.Join(templatesDir, dir, "*.html"))
		if err != nil {
			return nil, err
		}
		shared = append(shared, files...)
	}

	funcs := FuncMap()
	for _, name := range views {
		files := append(append([]string{}, shared...), filepath.Join(templatesDir, "views", name))
		r.AddFromFilesFuncs(name, funcs, files...)
	}
	return r, nil
}
