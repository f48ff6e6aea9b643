package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/twitch-login/internal/business"
	"github.com/openkcm/twitch-login/internal/cmdutils"
)

// BuildInfo will be set by the build system
var BuildInfo = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), BuildInfo)
		},
	}
}

func rootCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"twitch-login",
		"Twitch login sample",
		"Serves a landing page with a Twitch OAuth2 authorization code login.",
		BuildInfo,
		cmdutils.RunAsService,
		business.Main,
	)

	cmd.AddCommand(versionCmd())

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "failed to start the application", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
