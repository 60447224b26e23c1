// Package main provides the operations CLI for the chat widget backend. It
// talks directly to the upstream translation/message service.
package main

import (
	"context"
	"fmt"
	"os"

	"gabaychat/cmd/adm/commands"
	"gabaychat/internal/client"
	"gabaychat/internal/config"
	"gabaychat/internal/observability"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Disable OpenTelemetry exporters for the CLI to avoid connection errors.
	cfg.Server.LogLevel = "error"
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "gabaychat-adm")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		// The auto SDK tracer provider has no Shutdown; only flush SDK providers.
		if shutdown, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := shutdown.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
	}()

	upstreamClient := client.New(cfg, logger)

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Chat widget backend operations tool",
		Long: `Chat widget backend operations tool

Probes and exercises the upstream translation/message service from the
command line: connection checks, ad-hoc translations, language listings,
and stored message inspection.`,

		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.UpstreamCommands(upstreamClient, cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
