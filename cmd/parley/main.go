package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var core *services.Services

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Chat with knowledge-grounded assistants",
	Long: `parley is a client for the assistant backend: create assistants,
ground them with knowledge snippets, and chat with them in sessions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(config.GetLogLevel())

		if backendURL, _ := cmd.Flags().GetString("backend"); backendURL != "" {
			config.SetBackendBaseURL(backendURL)
		}
		core = services.InitializeServices()
	},
}

func main() {
	rootCmd.PersistentFlags().String("backend", "", "backend base URL (defaults to PARLEY_BACKEND_URL)")
	rootCmd.AddCommand(assistantsCmd, knowledgeCmd, chatCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
