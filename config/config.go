// Package config loads environment variables into a typed Config used across the service.
// Required settings identify the tracked message and the bot credential; everything
// else has a default so the bot can run with a minimal .env.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// DefaultWelcomeMessage is posted into every new inquiry channel. {user} is
// replaced by a mention of the reacting member.
const DefaultWelcomeMessage = "{user} welcome to your inquiry channel!\n\n" +
	"A staff member will be with you shortly, so feel free to ask your question here.\n" +
	"Only you and the staff team can see this channel.\n\n" +
	"📝 **Please post your inquiry below.**"

// Defaults for optional settings. Empty values count as unset.
const (
	DefaultEmoji         = "💬"
	DefaultChannelPrefix = "inquiry"
	DefaultDeleteReason  = "inquiry reaction removed by user"
)

// HTTPDisabled turns off the ops HTTP server when used as HTTP_ADDR.
const HTTPDisabled = "off"

type Config struct {
	// Discord
	BotToken   string `envconfig:"BOT_TOKEN" validate:"required"`
	MessageID  string `envconfig:"MESSAGE_ID" validate:"required,numeric"`
	ChannelID  string `envconfig:"CHANNEL_ID" validate:"required,numeric"`
	CategoryID string `envconfig:"CATEGORY_ID" validate:"required,numeric"`
	Emoji      string `envconfig:"EMOJI" validate:"required"`

	// Inquiry channels
	ChannelPrefix  string `envconfig:"CHANNEL_PREFIX" validate:"required,max=32"`
	WelcomeMessage string `envconfig:"WELCOME_MESSAGE" validate:"max=2000"`
	DeleteReason   string `envconfig:"DELETE_REASON" validate:"max=512"`

	// Ops
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Audit trail (optional)
	DBDsn string `envconfig:"DB_DSN"`
}

// Load reads environment variables, applies defaults and validates the result.
// The returned error names every missing or malformed variable.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	// envconfig defaults only cover absent variables; EMOJI= in a compose
	// file must behave like an unset one.
	defaultIfEmpty(&cfg.Emoji, DefaultEmoji)
	defaultIfEmpty(&cfg.ChannelPrefix, DefaultChannelPrefix)
	defaultIfEmpty(&cfg.WelcomeMessage, DefaultWelcomeMessage)
	defaultIfEmpty(&cfg.DeleteReason, DefaultDeleteReason)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and formats.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("envconfig")
	})
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		invalid = append(invalid, fmt.Sprintf("%s (%s)", fe.Field(), describe(fe)))
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required env: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid env: "+strings.Join(invalid, ", "))
	}
	return errors.New(strings.Join(parts, "; "))
}

// HTTPEnabled reports whether the ops server should listen.
func (c *Config) HTTPEnabled() bool {
	return c.HTTPAddr != "" && !strings.EqualFold(c.HTTPAddr, HTTPDisabled)
}

// AuditEnabled reports whether lifecycle events are written to Postgres.
func (c *Config) AuditEnabled() bool { return c.DBDsn != "" }

func defaultIfEmpty(v *string, def string) {
	if strings.TrimSpace(*v) == "" {
		*v = def
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "numeric":
		return "must be a numeric id"
	case "max":
		return "longer than " + fe.Param()
	default:
		return fe.Tag()
	}
}
