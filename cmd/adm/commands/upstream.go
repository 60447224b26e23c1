// Package commands implements the subcommands of the operations CLI.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gabaychat/internal/config"
	"gabaychat/internal/serviceinterfaces"

	"github.com/spf13/cobra"
)

// UpstreamCommands returns the command group for talking to the upstream
// translation/message service.
func UpstreamCommands(client serviceinterfaces.TranslationClient, cfg *config.Config) *cobra.Command {
	upstreamCmd := &cobra.Command{
		Use:   "upstream",
		Short: "Inspect and exercise the upstream translation service",
	}

	upstreamCmd.AddCommand(probeCommand(client, cfg))
	upstreamCmd.AddCommand(translateCommand(client))
	upstreamCmd.AddCommand(languagesCommand(client))
	upstreamCmd.AddCommand(messagesCommand(client))

	return upstreamCmd
}

func probeCommand(client serviceinterfaces.TranslationClient, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Test the connection to the upstream service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), config.ProbeTimeout)
			defer cancel()

			status := client.TestConnection(ctx)
			fmt.Printf("Base URL: %s\n", cfg.Upstream.BaseURL)
			if status.Success {
				fmt.Printf("Status:   %d\n", status.Status)
				fmt.Printf("Message:  %s\n", status.Message)
				return nil
			}
			fmt.Printf("Error:    %s\n", status.Error)
			os.Exit(1)
			return nil
		},
	}
}

func translateCommand(client serviceinterfaces.TranslationClient) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "translate <target-lang> <text>",
		Short: "Translate text through the upstream service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			translated, err := client.Translate(cmd.Context(), args[1], source, args[0])
			if err != nil {
				return err
			}
			fmt.Println(translated)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source language code (optional)")
	return cmd
}

func languagesCommand(client serviceinterfaces.TranslationClient) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the language codes the upstream service supports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			languages, err := client.SupportedLanguages(cmd.Context())
			if err != nil {
				return err
			}
			for _, lang := range languages {
				fmt.Println(lang)
			}
			return nil
		},
	}
}

func messagesCommand(client serviceinterfaces.TranslationClient) *cobra.Command {
	var lang string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List stored messages from the upstream service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			messages, err := client.Messages(cmd.Context(), lang)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(messages)
			}
			for _, msg := range messages {
				line := fmt.Sprintf("%s  %s  %s", msg.ID, msg.DisplayTimestamp(), msg.Original)
				if msg.Translation != nil && *msg.Translation != "" {
					line += "  -> " + *msg.Translation
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "translation language for the listing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit raw JSON")
	return cmd
}
