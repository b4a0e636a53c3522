package server

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/stars"
	"github.com/Zachkp/portfolio/internal/theme"
)

type pageData struct {
	Portfolio *content.Portfolio
	Theme     theme.Mode
	Palette   theme.Palette
	// FallbackTheme and FallbackCSS are set when the request did not pin a
	// mode; the page then follows the browser's prefers-color-scheme.
	FallbackTheme theme.Mode
	FallbackCSS   template.CSS
	Stars         []stars.Star
	Year          int
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Accept-CH", theme.HintHeader)
	c.Header("Critical-CH", theme.HintHeader)
	c.Header("Vary", theme.HintHeader+", Cookie")

	mode := s.theme.Preference(c.Request)
	data := pageData{
		Portfolio: s.portfolio,
		Theme:     mode,
		Palette:   theme.PaletteFor(mode),
		Stars:     stars.Generate(stars.DefaultCount, nil),
		Year:      s.now().Year(),
	}
	if !theme.Pinned(c.Request) {
		data.FallbackTheme = mode.Toggle()
		data.FallbackCSS = theme.SchemeCSS(data.FallbackTheme)
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// handleThemeToggle flips the theme cookie. The page posts the mode it is
// showing as "current", which matters when the media query fallback chose
// it. HTMX clients reload through HX-Refresh; plain form posts are
// redirected home.
func (s *Server) handleThemeToggle(c *gin.Context) {
	current := s.theme.Preference(c.Request)
	if m, err := theme.ParseMode(c.PostForm("current")); err == nil {
		current = m
	}
	next := current.Toggle()
	http.SetCookie(c.Writer, theme.Cookie(next))

	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleResume(c *gin.Context) {
	p := s.portfolio.Profile
	if p.Resume == "" {
		c.Status(http.StatusNotFound)
		return
	}
	path := filepath.Join(s.cfg.Content.AssetsDir, filepath.Clean("/"+strings.TrimPrefix(p.Resume, "/assets/")))
	if _, err := os.Stat(path); err != nil {
		logger.FromContext(c.Request.Context()).Warn("Resume not found", "path", path)
		c.Status(http.StatusNotFound)
		return
	}
	c.FileAttachment(path, p.ResumeFilename)
}

func (s *Server) handlePrivacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"retention": humanDuration(s.cfg.Tracking.Retention),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"streams": s.ActiveStreams(),
	})
}

// humanDuration renders retention periods such as "365 days".
func humanDuration(d time.Duration) string {
	day := 24 * time.Hour
	if d >= day && d%day == 0 {
		if n := d / day; n > 1 {
			return fmt.Sprintf("%d days", n)
		}
		return "one day"
	}
	return d.String()
}
