package server

import (
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/twitch-login/internal/middleware/sessionctx"
	"github.com/openkcm/twitch-login/internal/serviceerr"
	"github.com/openkcm/twitch-login/internal/session"
	"github.com/openkcm/twitch-login/internal/twitch"
	"github.com/openkcm/twitch-login/internal/view"
	"github.com/openkcm/twitch-login/pkg/fingerprint"
)

const (
	landingPath  = "/"
	loginPath    = "/auth/" + twitch.ProviderName
	callbackPath = loginPath + "/callback"
)

type handlers struct {
	sManager *session.Manager
	renderer *view.Renderer
}

// landing renders the profile of the session or the login link. It always
// answers 200.
func (h *handlers) landing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var profile *session.AuthenticatedProfile
	if sessionID, err := sessionctx.SessionIDFromContext(ctx); err == nil {
		profile, err = h.sManager.Profile(ctx, sessionID)
		if err != nil {
			slogctx.Error(ctx, "Failed to load the session profile", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := h.renderer.Landing(w, profile, loginPath); err != nil {
		slogctx.Error(ctx, "Failed to render the landing page", "error", err)
	}
}

// login redirects the browser to the provider.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, fp, err := requestIdentity(r)
	if err != nil {
		slogctx.Error(ctx, "Failed to identify the request", "error", err)
		http.Redirect(w, r, landingPath, http.StatusFound)
		return
	}

	redirect, err := h.sManager.StartLogin(ctx, sessionID, fp)
	if err != nil {
		slogctx.Error(ctx, "Failed to start the login", "error", err)
		http.Redirect(w, r, landingPath, http.StatusFound)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

// callback completes the login and always redirects to the landing page.
func (h *handlers) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer http.Redirect(w, r, landingPath, http.StatusFound)

	sessionID, fp, err := requestIdentity(r)
	if err != nil {
		slogctx.Error(ctx, "Failed to identify the request", "error", err)
		return
	}

	q := r.URL.Query()
	result, err := h.sManager.HandleCallback(ctx, sessionID, fp, session.Callback{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		logLoginFailure(r, err)
		return
	}

	cookie, err := h.sManager.MakeSessionCookie(ctx, result.SessionID)
	if err != nil {
		slogctx.Error(ctx, "Failed to create the session cookie", "error", err)
		return
	}

	http.SetCookie(w, cookie)
}

func requestIdentity(r *http.Request) (string, string, error) {
	sessionID, err := sessionctx.SessionIDFromContext(r.Context())
	if err != nil {
		return "", "", err
	}

	fp, err := fingerprint.ExtractFingerprint(r.Context())
	if err != nil {
		return "", "", err
	}

	return sessionID, fp, nil
}

func logLoginFailure(r *http.Request, err error) {
	ctx := r.Context()

	kind, ok := serviceerr.KindOf(err)
	if !ok {
		slogctx.Error(ctx, "Login failed", "error", err)
		return
	}

	if kind == serviceerr.KindInvalidState {
		slogctx.Warn(ctx, "Login rejected, possible CSRF attempt", "kind", kind, "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	slogctx.Warn(ctx, "Login failed", "kind", kind, "error", err)
}
