package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/server"
	"github.com/Zachkp/portfolio/internal/store"
)

func serveCmd(cfgFile *string) *cobra.Command {
	v := config.NewViper()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portfolio web server",
		Long:  `portfolio serve [--config=<file>] [--host=<host>] [--port=<port>] [--content=<file>] [--debug]`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindServeFlags(v, cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			return runServer(cmd, cfg)
		},
	}

	cmd.Flags().String("host", "", "listen host (default 0.0.0.0)")
	cmd.Flags().IntP("port", "p", 0, "listen port (default 8080)")
	cmd.Flags().String("content", "", "portfolio content file (default built-in)")
	cmd.Flags().String("db", "", "SQLite database path (default portfolio.db)")
	cmd.Flags().Bool("debug", false, "enable debug logging")
	return cmd
}

func bindServeFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		"server.host":   "host",
		"server.port":   "port",
		"content.path":  "content",
		"database.path": "db",
		"log.debug":     "debug",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func runServer(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(log)

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	portfolio, err := content.Load(cfg.Content.Path)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	sender, err := newSender(cfg.Contact)
	if err != nil {
		return err
	}

	if !cfg.Admin.Enabled() {
		log.Warn("Admin area disabled; set PORTFOLIO_ADMIN_PASSWORD to enable it")
	}
	if cfg.Tracking.Enabled {
		log.Info("Visitor tracking enabled with hashed IP addresses",
			slog.Duration("retention", cfg.Tracking.Retention))
	}

	srv, err := server.New(cfg, portfolio,
		server.WithStore(st),
		server.WithContact(contact.NewService(sender, st)),
		server.WithLogger(log),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// newLogger builds the process logger, teeing into cfg.File when set.
func newLogger(cfg config.Log) (*slog.Logger, func(), error) {
	opts := []logger.Option{logger.WithFormat(cfg.Format)}
	if cfg.Debug {
		opts = append(opts, logger.WithDebug())
	}

	closer := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		opts = append(opts, logger.WithWriter(f))
		closer = func() { _ = f.Close() }
	}
	return logger.New(opts...), closer, nil
}

func newSender(cfg config.Contact) (contact.Sender, error) {
	switch cfg.Provider {
	case config.ProviderSMTP:
		return contact.NewSMTPSender(contact.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			To:   cfg.SMTP.To,
		}), nil
	case config.ProviderForm:
		return contact.NewFormSender(cfg.Endpoint, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown contact provider %q", cfg.Provider)
	}
}
