package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Username  string
	Password  string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("CHAT_SERVER", "http://localhost:8080"),
		Username:  os.Getenv("CHAT_USER"),
		Password:  os.Getenv("CHAT_PASSWORD"),
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "chat",
		Short: "CLI client for the chat coordinator",
		Long: `chat is a thin client for the chat coordinator.

It speaks the coordinator's WebSocket protocol: register or authenticate,
send messages to rooms, replay history, and stream live events.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CHAT_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username (env: CHAT_USER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Password, "password", "p", cfg.Password, "Password; empty reconnects a known user (env: CHAT_PASSWORD)")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newListenCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
