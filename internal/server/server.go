// Package server serves the portfolio page, its HTMX fragments, the hero
// role stream and the admin area.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/theme"
	"github.com/Zachkp/portfolio/internal/typing"
	"github.com/Zachkp/portfolio/web"
)

// Server holds the site's routes and the services behind them.
type Server struct {
	cfg       *config.Config
	portfolio *content.Portfolio
	contact   *contact.Service
	store     *store.Store
	theme     theme.Provider
	log       *slog.Logger
	now       func() time.Time
	scheduler typing.Scheduler
	timing    typing.Timing

	adminToken string
	streams    atomic.Int64
	engine     *gin.Engine
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithStore enables visitor tracking and the admin area.
func WithStore(s *store.Store) Option {
	return func(srv *Server) {
		srv.store = s
	}
}

// WithContact enables contact form delivery.
func WithContact(svc *contact.Service) Option {
	return func(srv *Server) {
		srv.contact = svc
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		srv.log = l
	}
}

// WithClock overrides the clock used for page dates.
func WithClock(now func() time.Time) Option {
	return func(srv *Server) {
		srv.now = now
	}
}

// WithScheduler sets the scheduler used by hero role animators.
func WithScheduler(s typing.Scheduler) Option {
	return func(srv *Server) {
		srv.scheduler = s
	}
}

// WithThemeProvider overrides how a request's theme is resolved.
func WithThemeProvider(p theme.Provider) Option {
	return func(srv *Server) {
		srv.theme = p
	}
}

// New builds the server and its routes.
func New(cfg *config.Config, portfolio *content.Portfolio, opts ...Option) (*Server, error) {
	if cfg == nil || portfolio == nil {
		return nil, errors.New("server: config and content are required")
	}
	s := &Server{
		cfg:       cfg,
		portfolio: portfolio,
		log:       slog.Default(),
		now:       time.Now,
		timing:    cfg.Typing.Timing(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.theme == nil {
		def, err := theme.ParseMode(cfg.Theme.Default)
		if err != nil {
			return nil, err
		}
		s.theme = theme.RequestProvider{Default: def}
	}
	if err := s.timing.Validate(); err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s.adminToken = token

	engine, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ActiveStreams is the number of open hero role streams.
func (s *Server) ActiveStreams() int64 {
	return s.streams.Load()
}

func (s *Server) routes() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static files: %w", err)
	}
	r.StaticFS("/static", http.FS(static))
	r.Static("/assets", s.cfg.Content.AssetsDir)

	if s.store != nil && s.cfg.Tracking.Enabled {
		r.Use(s.trackVisitors())
	}

	r.GET("/", s.handleIndex)
	r.GET("/hero/roles", s.handleRoleStream)
	r.POST("/theme", s.handleThemeToggle)
	r.GET("/contact-form", s.handleContactForm)
	r.POST("/contact", s.handleContact)
	r.GET("/resume", s.handleResume)
	r.GET("/privacy", s.handlePrivacy)
	r.GET("/healthz", s.handleHealth)

	if s.store != nil && s.cfg.Admin.Enabled() {
		s.setupAdminRoutes(r)
	}
	return r, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully. Request
// contexts derive from ctx so open role streams end with it.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if s.store != nil && s.cfg.Tracking.Enabled {
		stop, err := s.startCleanup(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

var templateFuncs = template.FuncMap{
	"ago":   humanize.Time,
	"comma": humanize.Comma,
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate admin token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
