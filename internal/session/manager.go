package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/twitch-login/internal/config"
	"github.com/openkcm/twitch-login/internal/nonce"
	"github.com/openkcm/twitch-login/internal/serviceerr"
	"github.com/openkcm/twitch-login/pkg/cookiesign"
)

// Provider is the remote identity provider used to complete a login.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, accessToken string) (map[string]string, error)
}

type Manager struct {
	provider Provider
	sessions Repository
	nonce    nonce.Source

	sessionDuration time.Duration
	stateDuration   time.Duration

	sessionCookieTemplate config.CookieTemplate

	secret []byte
}

// Callback holds the query parameters of the provider redirect.
type Callback struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// LoginResult is returned by a completed login. SessionID replaces the
// identifier the login was started with.
type LoginResult struct {
	SessionID string
}

func NewManager(cfg *config.SessionManager, provider Provider, sessions Repository) (*Manager, error) {
	if len(cfg.Secret) < config.MinSessionSecretLength {
		return nil, fmt.Errorf("%w: session secret must be at least %d bytes", serviceerr.ErrConfiguration, config.MinSessionSecretLength)
	}

	return &Manager{
		provider:              provider,
		sessions:              sessions,
		sessionDuration:       cfg.SessionDuration,
		stateDuration:         cfg.StateDuration,
		sessionCookieTemplate: cfg.SessionCookieTemplate,
		secret:                []byte(cfg.Secret),
	}, nil
}

// NewSessionID returns a fresh browser session identifier.
func (m *Manager) NewSessionID() string {
	return m.nonce.SessionID()
}

// StartLogin issues a state bound to the browser session and returns the
// provider authorization URL.
func (m *Manager) StartLogin(ctx context.Context, sessionID, fingerprint string) (string, error) {
	state := State{
		ID:          m.nonce.State(),
		SessionID:   sessionID,
		Fingerprint: fingerprint,
		Expiry:      time.Now().Add(m.stateDuration),
	}

	if err := m.sessions.StoreState(ctx, state); err != nil {
		return "", fmt.Errorf("storing state: %w", err)
	}

	return m.provider.AuthCodeURL(state.ID), nil
}

// HandleCallback completes a login. The state is validated first, then the
// code is exchanged and the profile fetched. A session is written only when
// every step succeeded.
func (m *Manager) HandleCallback(ctx context.Context, sessionID, fingerprint string, cb Callback) (LoginResult, error) {
	if err := m.consumeState(ctx, sessionID, fingerprint, cb.State); err != nil {
		return LoginResult{}, err
	}

	if cb.Error != "" {
		cause := errors.New(strings.TrimSpace(cb.Error + " " + cb.ErrorDescription))
		return LoginResult{}, serviceerr.NewAuthError(serviceerr.KindProviderRejected, cause)
	}

	token, err := m.provider.Exchange(ctx, cb.Code)
	if err != nil {
		return LoginResult{}, asAuthError(serviceerr.KindProviderRejected, err)
	}

	slogctx.Debug(ctx, "Exchanged the auth code for tokens")

	fields, err := m.provider.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return LoginResult{}, asAuthError(serviceerr.KindProfileFetchFailed, err)
	}

	sess := Session{
		ID: m.nonce.SessionID(),
		Profile: &AuthenticatedProfile{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			Fields:       fields,
		},
		Expiry: time.Now().Add(m.sessionDuration),
	}

	if err := m.sessions.StoreSession(ctx, sess); err != nil {
		return LoginResult{}, fmt.Errorf("storing session: %w", err)
	}

	if err := m.sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		slogctx.Warn(ctx, "Failed to delete the previous session", "error", err)
	}

	slogctx.Info(ctx, "User logged in", "display_name", fields["display_name"])

	return LoginResult{SessionID: sess.ID}, nil
}

func (m *Manager) consumeState(ctx context.Context, sessionID, fingerprint, stateID string) error {
	if stateID == "" {
		return serviceerr.NewAuthError(serviceerr.KindInvalidState, errors.New("missing state"))
	}

	state, err := m.sessions.ConsumeState(ctx, stateID)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return serviceerr.NewAuthError(serviceerr.KindInvalidState, errors.New("unknown state"))
	}
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	switch {
	case time.Now().After(state.Expiry):
		return serviceerr.NewAuthError(serviceerr.KindInvalidState, errors.New("state expired"))
	case state.SessionID != sessionID:
		return serviceerr.NewAuthError(serviceerr.KindInvalidState, errors.New("state issued to another session"))
	case state.Fingerprint != fingerprint:
		return serviceerr.NewAuthError(serviceerr.KindInvalidState, errors.New("fingerprint mismatch"))
	}

	return nil
}

// Profile returns the profile of the session, or nil if the user is not
// logged in.
func (m *Manager) Profile(ctx context.Context, sessionID string) (*AuthenticatedProfile, error) {
	sess, err := m.sessions.LoadSession(ctx, sessionID)
	if errors.Is(err, serviceerr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if time.Now().After(sess.Expiry) {
		return nil, nil
	}

	return sess.Profile, nil
}

// MakeSessionCookie returns the signed cookie carrying sessionID.
func (m *Manager) MakeSessionCookie(ctx context.Context, sessionID string) (*http.Cookie, error) {
	sessionCookie := m.sessionCookieTemplate.ToCookie(cookiesign.Sign(sessionID, m.secret))

	err := sessionCookie.Valid()
	if err != nil {
		return nil, fmt.Errorf("invalid session cookie: %w", err)
	}

	if !sessionCookie.Secure {
		slogctx.Debug(ctx, "Session cookie is not marked as Secure; this is not recommended in production environments")
	}
	if !sessionCookie.HttpOnly {
		slogctx.Warn(ctx, "Session cookie is not marked as HttpOnly; this is not recommended in production environments")
	}

	return sessionCookie, nil
}

// SessionIDFromCookie verifies a session cookie value and returns the
// identifier it carries.
func (m *Manager) SessionIDFromCookie(value string) (string, bool) {
	return cookiesign.Verify(value, m.secret)
}

// SessionCookieName is the name of the session cookie.
func (m *Manager) SessionCookieName() string {
	return m.sessionCookieTemplate.Name
}

func asAuthError(kind serviceerr.Kind, err error) error {
	if _, ok := serviceerr.KindOf(err); ok {
		return err
	}

	return serviceerr.NewAuthError(kind, err)
}
