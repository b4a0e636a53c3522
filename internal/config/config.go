// Package config loads the server configuration from defaults, an optional
// YAML file, .env files, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/theme"
	"github.com/Zachkp/portfolio/internal/typing"
)

const EnvPrefix = "PORTFOLIO"

const (
	ProviderForm = "form"
	ProviderSMTP = "smtp"
)

type Config struct {
	Server   Server   `mapstructure:"server"`
	Log      Log      `mapstructure:"log"`
	Content  Content  `mapstructure:"content"`
	Database Database `mapstructure:"database"`
	Contact  Contact  `mapstructure:"contact"`
	Admin    Admin    `mapstructure:"admin"`
	Tracking Tracking `mapstructure:"tracking"`
	Theme    Theme    `mapstructure:"theme"`
	Typing   Typing   `mapstructure:"typing"`
}

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// Addr is the listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Log struct {
	Debug  bool   `mapstructure:"debug"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Content struct {
	// Path is a portfolio YAML file; empty uses the built-in content.
	Path string `mapstructure:"path"`
	// AssetsDir holds images and the resume, served under /assets.
	AssetsDir string `mapstructure:"assetsDir"`
}

type Database struct {
	Path string `mapstructure:"path"`
}

type Contact struct {
	Provider string        `mapstructure:"provider"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	SMTP     SMTP          `mapstructure:"smtp"`
}

type SMTP struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	To   string `mapstructure:"to"`
}

// Admin credentials. The admin area is disabled while Password is empty.
type Admin struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func (a Admin) Enabled() bool {
	return a.Password != ""
}

type Tracking struct {
	Enabled         bool          `mapstructure:"enabled"`
	Retention       time.Duration `mapstructure:"retention"`
	CleanupSchedule string        `mapstructure:"cleanupSchedule"`
}

type Theme struct {
	Default string `mapstructure:"default"`
}

type Typing struct {
	TypeInterval   time.Duration `mapstructure:"typeInterval"`
	DeleteInterval time.Duration `mapstructure:"deleteInterval"`
	HoldDelay      time.Duration `mapstructure:"holdDelay"`
}

// Timing converts the settings for the animator.
func (t Typing) Timing() typing.Timing {
	return typing.Timing{Type: t.TypeInterval, Delete: t.DeleteInterval, Hold: t.HoldDelay}
}

// legacyEnv maps config keys to the unprefixed variables earlier
// deployments used.
var legacyEnv = map[string]string{
	"server.port":       "PORT",
	"contact.smtp.host": "SMTP_HOST",
	"contact.smtp.port": "SMTP_PORT",
	"contact.smtp.user": "SMTP_USER",
	"contact.smtp.pass": "SMTP_PASS",
	"contact.smtp.to":   "TO_EMAIL",
	"admin.username":    "ADMIN_USERNAME",
	"admin.password":    "ADMIN_PASSWORD",
}

// NewViper returns a viper instance with defaults and environment
// bindings installed.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("log.debug", false)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("content.path", "")
	v.SetDefault("content.assetsDir", "./assets")

	v.SetDefault("database.path", "portfolio.db")

	v.SetDefault("contact.provider", ProviderForm)
	v.SetDefault("contact.endpoint", contact.DefaultFormEndpoint)
	v.SetDefault("contact.timeout", 15*time.Second)
	v.SetDefault("contact.smtp.host", "smtp.gmail.com")
	v.SetDefault("contact.smtp.port", "587")
	v.SetDefault("contact.smtp.user", "")
	v.SetDefault("contact.smtp.pass", "")
	v.SetDefault("contact.smtp.to", "")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")

	v.SetDefault("tracking.enabled", true)
	v.SetDefault("tracking.retention", 365*24*time.Hour)
	v.SetDefault("tracking.cleanupSchedule", "@daily")

	v.SetDefault("theme.default", string(theme.Light))

	v.SetDefault("typing.typeInterval", typing.TypeInterval)
	v.SetDefault("typing.deleteInterval", typing.DeleteInterval)
	v.SetDefault("typing.holdDelay", typing.HoldDelay)
}

// Load reads configFile (if set) into v and decodes the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", f))
	}
	switch c.Contact.Provider {
	case ProviderForm:
		if c.Contact.Endpoint == "" {
			errs = append(errs, errors.New("contact.endpoint is required for the form provider"))
		}
	case ProviderSMTP:
	default:
		errs = append(errs, fmt.Errorf("contact.provider must be %s or %s, got %q", ProviderForm, ProviderSMTP, c.Contact.Provider))
	}
	if _, err := theme.ParseMode(c.Theme.Default); err != nil {
		errs = append(errs, fmt.Errorf("theme.default: %w", err))
	}
	if err := c.Typing.Timing().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Tracking.Enabled {
		if c.Tracking.Retention <= 0 {
			errs = append(errs, errors.New("tracking.retention must be positive"))
		}
		if _, err := cron.ParseStandard(c.Tracking.CleanupSchedule); err != nil {
			errs = append(errs, fmt.Errorf("tracking.cleanupSchedule: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
