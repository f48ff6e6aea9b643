package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/twitch-login/internal/config"
	"github.com/openkcm/twitch-login/internal/serviceerr"
)

const testSessionSecret = "12345678901234567890123456789012" // NOSONAR

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("TWITCH_CLIENT_ID", "client-id")
	t.Setenv("TWITCH_SECRET", "client-secret")
	t.Setenv("SESSION_SECRET", testSessionSecret)
	t.Setenv("CALLBACK_URL", "http://localhost:3000/auth/twitch/callback")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "twitch-login", cfg.Application.Name)
	assert.Equal(t, ":3000", cfg.HTTP.Address)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "client-id", cfg.Twitch.ClientID)
	assert.Equal(t, "client-secret", cfg.Twitch.ClientSecret)
	assert.Equal(t, []string{"user_read"}, cfg.Twitch.Scopes)
	assert.Equal(t, "https://api.twitch.tv/helix/users", cfg.Twitch.UsersURL)
	assert.Empty(t, cfg.Twitch.AuthURL)
	assert.Equal(t, 10*time.Second, cfg.Twitch.HTTPTimeout)
	assert.Equal(t, config.SessionStoreMemory, cfg.SessionManager.Store)
	assert.Equal(t, 24*time.Hour, cfg.SessionManager.SessionDuration)
	assert.Equal(t, 10*time.Minute, cfg.SessionManager.StateDuration)
	assert.Equal(t, config.CookieTemplate{
		Name:     "twitch-login.sid",
		Path:     "/",
		HTTPOnly: true,
		SameSite: config.CookieSameSiteLax,
	}, cfg.SessionManager.SessionCookieTemplate)
	assert.Equal(t, "twitch-login", cfg.ValKey.Prefix)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TWITCH_SCOPES", "user:read:email,channel:read:subscriptions")
	t.Setenv("SESSION_STORE", "valkey")
	t.Setenv("VALKEY_HOST", "localhost:6379")
	t.Setenv("VALKEY_PREFIX", "sample")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("SESSION_COOKIE_SAME_SITE", "strict")
	t.Setenv("HTTP_ADDRESS", "localhost:0")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"user:read:email", "channel:read:subscriptions"}, cfg.Twitch.Scopes)
	assert.Equal(t, config.SessionStoreValKey, cfg.SessionManager.Store)
	assert.Equal(t, "localhost:6379", cfg.ValKey.Host)
	assert.Equal(t, "sample", cfg.ValKey.Prefix)
	assert.True(t, cfg.SessionManager.SessionCookieTemplate.Secure)
	assert.Equal(t, config.CookieSameSiteStrict, cfg.SessionManager.SessionCookieTemplate.SameSite)
	assert.Equal(t, "localhost:0", cfg.HTTP.Address)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{
			name:    "Missing client secret",
			env:     map[string]string{"TWITCH_SECRET": ""},
			wantMsg: "TWITCH_SECRET",
		},
		{
			name:    "Missing client id",
			env:     map[string]string{"TWITCH_CLIENT_ID": ""},
			wantMsg: "TWITCH_CLIENT_ID",
		},
		{
			name:    "Missing session secret",
			env:     map[string]string{"SESSION_SECRET": ""},
			wantMsg: "SESSION_SECRET",
		},
		{
			name:    "Missing callback URL",
			env:     map[string]string{"CALLBACK_URL": ""},
			wantMsg: "CALLBACK_URL",
		},
		{
			name:    "Short session secret",
			env:     map[string]string{"SESSION_SECRET": "too-short"},
			wantMsg: "at least 32 bytes",
		},
		{
			name:    "Relative callback URL",
			env:     map[string]string{"CALLBACK_URL": "/auth/twitch/callback"},
			wantMsg: "absolute URL",
		},
		{
			name:    "Unknown session store",
			env:     map[string]string{"SESSION_STORE": "postgres"},
			wantMsg: "unknown SESSION_STORE",
		},
		{
			name:    "Valkey without host",
			env:     map[string]string{"SESSION_STORE": "valkey"},
			wantMsg: "VALKEY_HOST",
		},
		{
			name:    "Unknown same site",
			env:     map[string]string{"SESSION_COOKIE_SAME_SITE": "sometimes"},
			wantMsg: "SESSION_COOKIE_SAME_SITE",
		},
		{
			name:    "Bad duration",
			env:     map[string]string{"SESSION_DURATION": "forever"},
			wantMsg: "SessionDuration",
		},
		{
			name:    "Bad log level",
			env:     map[string]string{"LOG_LEVEL": "loud"},
			wantMsg: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, serviceerr.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
