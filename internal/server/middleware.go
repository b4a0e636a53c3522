package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Zachkp/portfolio/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an ID, stores a request-scoped
// logger in the context and logs the outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		ctx := logger.WithContext(c.Request.Context(), s.log)
		ctx = logger.WithValues(ctx, "request_id", id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		log := logger.FromContext(ctx)
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			log.Warn("Request failed", append(attrs, slog.String("errors", c.Errors.String()))...)
			return
		}
		log.Debug("Request handled", attrs...)
	}
}

// untrackedPrefixes are never recorded as visits.
var untrackedPrefixes = []string{
	"/static/",
	"/assets/",
	"/admin",
	"/favicon",
	"/privacy",
	"/hero/",
	"/healthz",
	"/contact",
	"/theme",
	"/resume",
}

func tracked(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return false
		}
	}
	return r.Header.Get("DNT") != "1"
}

// trackVisitors records page views off the request path. Only requests
// that were served successfully count, so scanners hitting missing paths
// stay out of the visitor log.
func (s *Server) trackVisitors() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tracked(c.Request) {
			c.Next()
			return
		}

		c.Next()
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		ip, ua, path := c.ClientIP(), c.Request.UserAgent(), c.Request.URL.Path
		log := logger.FromContext(c.Request.Context())
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.store.RecordVisit(ctx, ip, ua, path); err != nil {
				log.Warn("Failed to record visit", slog.Any("error", err))
			}
		}()
	}
}
