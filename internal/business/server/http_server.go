package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/twitch-login/internal/config"
	"github.com/openkcm/twitch-login/internal/middleware/sessionctx"
	"github.com/openkcm/twitch-login/internal/session"
	"github.com/openkcm/twitch-login/internal/view"
	"github.com/openkcm/twitch-login/pkg/fingerprint"
)

// createHTTPServer creates the login http server using the given config
func createHTTPServer(_ context.Context, cfg *config.Config, sManager *session.Manager, renderer *view.Renderer) *http.Server {
	h := &handlers{
		sManager: sManager,
		renderer: renderer,
	}

	withSession := sessionctx.SessionMiddleware(sManager)
	route := func(operationID string, f http.HandlerFunc) http.Handler {
		return newTraceMiddleware(cfg, operationID)(fingerprint.FingerprintCtxMiddleware(withSession(f)))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", route("Landing", h.landing))
	mux.Handle("GET "+loginPath, route("Login", h.login))
	mux.Handle("GET "+callbackPath, route("Callback", h.callback))

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: mux,
	}
}

// StartHTTPServer starts the HTTP server using the given config and blocks
// until ctx is done.
func StartHTTPServer(ctx context.Context, cfg *config.Config, sManager *session.Manager, renderer *view.Renderer) error {
	if err := initMeters(ctx, cfg); err != nil {
		return err
	}

	server := createHTTPServer(ctx, cfg, sManager, renderer)

	slogctx.Info(ctx, "Starting a listener", "address", server.Addr)

	// Parse network if the address if provided in the format of network://address.
	// Otherwise use tcp network by default.
	network := "tcp"
	if idx := strings.IndexRune(server.Addr, ':'); idx != -1 && len(server.Addr) > idx+3 && server.Addr[idx:idx+3] == "://" {
		network = server.Addr[:idx]
		server.Addr = server.Addr[idx+3:]
	}

	listener, err := new(net.ListenConfig).Listen(ctx, network, server.Addr)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed to create a listener")
	}

	slogctx.Info(ctx, "A listener started", "address", listener.Addr().String())

	go func() {
		slogctx.Info(ctx, "Serving an HTTP server", "address", listener.Addr().String())
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Failed to serve an HTTP server", "error", err)
		}

		slogctx.Info(ctx, "Stopped an HTTP server")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	slogctx.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
