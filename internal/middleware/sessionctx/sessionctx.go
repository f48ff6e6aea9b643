// Package sessionctx resolves the browser session of a request and provides
// utilities to inject and retrieve its identifier in and from the context.
package sessionctx

import (
	"context"
	"errors"
	"net/http"

	slogctx "github.com/veqryn/slog-context"
)

// Using an unexported type prevents key collisions from other packages.
type contextKey string

// SessionIDKey is the context key used to store the browser session identifier.
const SessionIDKey contextKey = "session-id"

// Issuer creates and verifies session cookies.
type Issuer interface {
	SessionCookieName() string
	SessionIDFromCookie(value string) (string, bool)
	NewSessionID() string
	MakeSessionCookie(ctx context.Context, sessionID string) (*http.Cookie, error)
}

// SessionMiddleware is an http.Handler middleware that injects the session
// identifier carried by the signed session cookie into the context. Requests
// without a valid cookie get a new identifier and a Set-Cookie header.
func SessionMiddleware(issuer Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID, ok := fromRequest(r, issuer)
			if !ok {
				sessionID = issuer.NewSessionID()

				cookie, err := issuer.MakeSessionCookie(ctx, sessionID)
				if err != nil {
					slogctx.Error(ctx, "Failed to create a session cookie", "error", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, cookie)
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(ctx, sessionID)))
		})
	}
}

func fromRequest(r *http.Request, issuer Issuer) (string, bool) {
	cookie, err := r.Cookie(issuer.SessionCookieName())
	if err != nil {
		return "", false
	}

	return issuer.SessionIDFromCookie(cookie.Value)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// SessionIDFromContext is a helper function that retrieves the session
// identifier from the context.
func SessionIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(SessionIDKey).(string)
	if !ok {
		return "", errors.New("session id not found in context")
	}
	return id, nil
}
