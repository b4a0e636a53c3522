package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// startCleanup prunes old tracking data once now and then on the
// configured schedule. The returned func stops the schedule and waits for
// the initial pass and any scheduled pass to finish.
func (s *Server) startCleanup(ctx context.Context) (func(), error) {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Tracking.CleanupSchedule, func() { s.cleanup(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", s.cfg.Tracking.CleanupSchedule, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.cleanup(ctx)
	}()
	c.Start()

	return func() {
		<-c.Stop().Done()
		wg.Wait()
	}, nil
}

func (s *Server) cleanup(ctx context.Context) {
	removed, err := s.store.Cleanup(ctx, s.cfg.Tracking.Retention)
	if err != nil {
		s.log.Error("Retention cleanup failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.log.Info("Removed old tracking data", slog.Int64("rows", removed))
	}
}
