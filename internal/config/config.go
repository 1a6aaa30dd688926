package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken       string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath         string        `envconfig:"DB_PATH" default:"./data/profile.db"`
	DefaultTZ      string        `envconfig:"DEFAULT_TZ" default:"UTC"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"` // healthz
	Language       string        `envconfig:"BOT_LANGUAGE" default:"en"` // en|fr
	ReminderWindow string        `envconfig:"REMINDER_WINDOW" default:"09:00-21:00"`
	ReminderRepeat time.Duration `envconfig:"REMINDER_REPEAT" default:"24h"`
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`

	// E-mail copies of reminders are sent only when the key is set.
	SendGridAPIKey string `envconfig:"SENDGRID_API_KEY"`
	MailFrom       string `envconfig:"MAIL_FROM" default:"reminders@pill-profile.local"`
}

// Load reads an optional .env file, then environment variables into Config.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	if _, err := domain.ValidateTZ(c.DefaultTZ); err != nil {
		return fmt.Errorf("DEFAULT_TZ: %w", err)
	}
	if _, _, err := domain.ParseActiveWindow(c.ReminderWindow); err != nil {
		return fmt.Errorf("REMINDER_WINDOW: %w", err)
	}
	if c.ReminderRepeat < time.Minute {
		return errors.New("REMINDER_REPEAT: must be at least 1m")
	}
	if c.PollInterval < time.Second {
		return errors.New("POLL_INTERVAL: must be at least 1s")
	}
	switch c.Language {
	case "en", "fr":
	default:
		return fmt.Errorf("BOT_LANGUAGE: unsupported %q", c.Language)
	}
	return nil
}

// MailEnabled reports whether reminder e-mails should be sent.
func (c Config) MailEnabled() bool {
	return c.SendGridAPIKey != ""
}

// Window returns the reminder delivery window in DefaultTZ.
func (c Config) Window() (domain.Window, error) {
	loc, err := time.LoadLocation(c.DefaultTZ)
	if err != nil {
		return domain.Window{}, fmt.Errorf("DEFAULT_TZ: %w", err)
	}
	from, to, err := domain.ParseActiveWindow(c.ReminderWindow)
	if err != nil {
		return domain.Window{}, fmt.Errorf("REMINDER_WINDOW: %w", err)
	}
	return domain.Window{Loc: loc, FromM: from, ToM: to}, nil
}
