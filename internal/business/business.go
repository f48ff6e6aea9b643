package business

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/twitch-login/internal/business/server"
	"github.com/openkcm/twitch-login/internal/config"
	"github.com/openkcm/twitch-login/internal/session"
	sessionmemory "github.com/openkcm/twitch-login/internal/session/memory"
	sessionvalkey "github.com/openkcm/twitch-login/internal/session/valkey"
	"github.com/openkcm/twitch-login/internal/twitch"
	"github.com/openkcm/twitch-login/internal/view"
)

const pageTitle = "Twitch Auth Sample"

// Main starts the login HTTP server and blocks until ctx is done.
func Main(ctx context.Context, cfg *config.Config) error {
	sessionManager, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	defer closeFn()

	renderer, err := view.NewRenderer(pageTitle)
	if err != nil {
		return fmt.Errorf("initialising the renderer: %w", err)
	}

	return server.StartHTTPServer(ctx, cfg, sessionManager, renderer)
}

func initSessionManager(ctx context.Context, cfg *config.Config) (_ *session.Manager, closeFn func(), _ error) {
	sessionRepo, closeFn, err := initSessionRepository(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	sessManager, err := session.NewManager(
		&cfg.SessionManager,
		twitch.NewClient(cfg.Twitch),
		sessionRepo,
	)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("creating session manager: %w", err)
	}

	return sessManager, closeFn, nil
}

func initSessionRepository(ctx context.Context, cfg *config.Config) (session.Repository, func(), error) {
	switch cfg.SessionManager.Store {
	case config.SessionStoreValKey:
		valkeyClient, err := valkeyClientFromConfig(cfg.ValKey)
		if err != nil {
			return nil, nil, err
		}

		slogctx.Info(ctx, "Using the valkey session store", "host", cfg.ValKey.Host, "prefix", cfg.ValKey.Prefix)

		return sessionvalkey.NewRepository(valkeyClient, cfg.ValKey.Prefix), valkeyClient.Close, nil
	case config.SessionStoreMemory, "":
		slogctx.Info(ctx, "Using the in-memory session store")

		return sessionmemory.NewRepository(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store: %q", cfg.SessionManager.Store)
	}
}

func valkeyClientFromConfig(cfg config.ValKey) (valkey.Client, error) {
	valkeyClient, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{cfg.Host},
		Username:    cfg.User,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return valkeyClient, nil
}
