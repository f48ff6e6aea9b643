// Package config defines the necessary types to configure the application.
// All values are read from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/openkcm/twitch-login/internal/serviceerr"
)

// MinSessionSecretLength is the minimum length of SESSION_SECRET in bytes.
const MinSessionSecretLength = 32

type SessionStoreType string

const (
	SessionStoreMemory SessionStoreType = "memory"
	SessionStoreValKey SessionStoreType = "valkey"
)

type Config struct {
	Application Application
	Logger      Logger `envPrefix:"LOG_"`

	HTTP HTTPServer `envPrefix:"HTTP_"`

	Twitch         Twitch
	SessionManager SessionManager `envPrefix:"SESSION_"`
	ValKey         ValKey         `envPrefix:"VALKEY_"`
}

type Application struct {
	Name    string `env:"APP_NAME" envDefault:"twitch-login"`
	Version string
}

type Logger struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Address         string        `env:"ADDRESS" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Twitch holds the OAuth2 client registration. Empty endpoint URLs fall
// back to the public Twitch endpoints.
type Twitch struct {
	ClientID     string        `env:"TWITCH_CLIENT_ID,required,notEmpty"`
	ClientSecret string        `env:"TWITCH_SECRET,required,notEmpty"`
	CallbackURL  string        `env:"CALLBACK_URL,required,notEmpty"`
	Scopes       []string      `env:"TWITCH_SCOPES" envSeparator:"," envDefault:"user_read"`
	AuthURL      string        `env:"TWITCH_AUTH_URL"`
	TokenURL     string        `env:"TWITCH_TOKEN_URL"`
	UsersURL     string        `env:"TWITCH_USERS_URL" envDefault:"https://api.twitch.tv/helix/users"`
	HTTPTimeout  time.Duration `env:"TWITCH_HTTP_TIMEOUT" envDefault:"10s"`
}

type SessionManager struct {
	Secret          string           `env:"SECRET,required,notEmpty"`
	Store           SessionStoreType `env:"STORE" envDefault:"memory"`
	SessionDuration time.Duration    `env:"DURATION" envDefault:"24h"`
	StateDuration   time.Duration    `env:"STATE_DURATION" envDefault:"10m"`

	SessionCookieTemplate CookieTemplate `envPrefix:"COOKIE_"`
}

type ValKey struct {
	Host     string `env:"HOST"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Prefix   string `env:"PREFIX" envDefault:"twitch-login"`
}

type CookieSameSite string

const (
	CookieSameSiteNone   CookieSameSite = "none"
	CookieSameSiteLax    CookieSameSite = "lax"
	CookieSameSiteStrict CookieSameSite = "strict"
)

type CookieTemplate struct {
	Name     string         `env:"NAME" envDefault:"twitch-login.sid"`
	MaxAge   int            `env:"MAX_AGE" envDefault:"0"`
	Path     string         `env:"PATH" envDefault:"/"`
	Domain   string         `env:"DOMAIN"`
	Secure   bool           `env:"SECURE" envDefault:"false"`
	HTTPOnly bool           `env:"HTTP_ONLY" envDefault:"true"`
	SameSite CookieSameSite `env:"SAME_SITE" envDefault:"lax"`
}

// Load reads the configuration from the process environment and validates it.
// Every returned error wraps serviceerr.ErrConfiguration.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing environment: %w", serviceerr.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SessionManager.Secret) < MinSessionSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength))
	}

	if u, err := url.Parse(c.Twitch.CallbackURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("CALLBACK_URL must be an absolute URL: %q", c.Twitch.CallbackURL))
	}

	if c.Twitch.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("TWITCH_HTTP_TIMEOUT must be positive"))
	}

	if c.SessionManager.SessionDuration <= 0 || c.SessionManager.StateDuration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION and SESSION_STATE_DURATION must be positive"))
	}

	switch c.SessionManager.Store {
	case SessionStoreMemory:
	case SessionStoreValKey:
		if c.ValKey.Host == "" {
			errs = append(errs, errors.New("VALKEY_HOST is required when SESSION_STORE is valkey"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE: %q", c.SessionManager.Store))
	}

	if sameSite := c.SessionManager.SessionCookieTemplate.SameSite; !sameSite.Valid() {
		errs = append(errs, fmt.Errorf("unknown SESSION_COOKIE_SAME_SITE: %q", sameSite))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logger.Level)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if c.Logger.Format != "json" && c.Logger.Format != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text: %q", c.Logger.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", serviceerr.ErrConfiguration, errors.Join(errs...))
	}

	return nil
}
