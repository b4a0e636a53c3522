package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/logger"
)

const (
	adminCookie       = "admin_token"
	adminCookieMaxAge = 3600 * 24
	defaultListLimit  = 200
)

// adminAuth requires the session cookie set by a successful login.
func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Admin.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Admin.Password))
	return userOK&passOK == 1
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		visitor := s.store.HashIP(c.ClientIP())
		if !s.credentialsMatch(c.PostForm("username"), c.PostForm("password")) {
			log.Warn("Failed admin login attempt", slog.String("visitor", visitor))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
			return
		}
		c.SetCookie(adminCookie, s.adminToken, adminCookieMaxAge, "/admin", "", false, true)
		log.Info("Admin login successful", slog.String("visitor", visitor))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/api/visitors", func(c *gin.Context) {
		visitors, err := s.store.Visitors(c.Request.Context(), listLimit(c))
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load visitors"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"visitors": visitors})
	})

	admin.GET("/api/submissions", func(c *gin.Context) {
		subs, err := s.store.Submissions(c.Request.Context(), listLimit(c))
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load submissions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"submissions": subs})
	})

	admin.POST("/cleanup", func(c *gin.Context) {
		removed, err := s.store.Cleanup(c.Request.Context(), s.cfg.Tracking.Retention)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
			return
		}
		logger.FromContext(c.Request.Context()).Info("Manual retention cleanup", slog.Int64("removed", removed))
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, stats)
	})
}

// listLimit reads ?limit, clamped to 1..defaultListLimit.
func listLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 || n > defaultListLimit {
		return defaultListLimit
	}
	return n
}
