package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/typing"
)

// roleEvent is the payload of each "role" event. Text is wrapped in JSON
// because browsers drop events whose data is empty.
type roleEvent struct {
	Text string `json:"text"`
}

// handleRoleStream runs one typing animator for the connection and streams
// its text as server-sent events until the client goes away.
func (s *Server) handleRoleStream(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	updates := make(chan string, 1)
	opts := []typing.Option{
		typing.WithTiming(s.timing),
		typing.WithOnChange(func(text string) { offerLatest(updates, text) }),
	}
	if s.scheduler != nil {
		opts = append(opts, typing.WithScheduler(s.scheduler))
	}
	a, err := typing.New(s.portfolio.Roles, opts...)
	if err != nil {
		log.Error("Failed to start role animator", slog.Any("error", err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	defer a.Dispose()

	s.streams.Add(1)
	defer s.streams.Add(-1)

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Role stream closed")
			return
		case text := <-updates:
			c.SSEvent("role", roleEvent{Text: text})
			c.Writer.Flush()
		}
	}
}

// offerLatest puts v on a one-slot channel, replacing any value the reader
// has not taken yet. It never blocks, so it is safe to call from the
// animator callback.
func offerLatest(ch chan string, v string) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
