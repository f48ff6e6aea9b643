package cmdutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/twitch-login/internal/config"
)

type BusinessFunc func(context.Context, *config.Config) error

type WrapperFunc func(context.Context, BusinessFunc, *config.Config) error

// CobraCommand loads the configuration from the environment and passes it
// to wrapperFunc. Configuration errors stop the command before businessFunc
// is reached.
func CobraCommand(use, short, long, buildInfo string, wrapperFunc WrapperFunc, businessFunc BusinessFunc) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Long:         long,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			err = wrapperFunc(cmd.Context(), businessFunc, cfg)
			if err != nil {
				return fmt.Errorf("running the server: %w", err)
			}

			return nil
		},
	}
}

func RunAsService(ctx context.Context, fn BusinessFunc, cfg *config.Config) error {
	err := InitLogger(os.Stderr, cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	slogctx.Info(ctx, "Starting the application", "address", cfg.HTTP.Address, "store", cfg.SessionManager.Store)

	err = fn(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to start the main business application")
	}

	return nil
}

// InitLogger installs the default slog logger. Records carry the context
// attributes added with slogctx.With.
func InitLogger(w io.Writer, cfg config.Logger, app config.Application) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json", "":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format: %q", cfg.Format)
	}

	logger := slog.New(slogctx.NewHandler(handler, nil)).With(
		slog.String("app", app.Name),
		slog.String("version", app.Version),
	)
	slog.SetDefault(logger)

	return nil
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	cfg.Application.Version = buildInfo

	return cfg, nil
}
