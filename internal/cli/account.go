package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YisusLuligo/chat/internal/server"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Username == "" || cfg.Password == "" {
				return fmt.Errorf("--user and --password are required")
			}

			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Do(server.Command{
				Op:       server.OpRegister,
				Username: cfg.Username,
				Password: cfg.Password,
			})
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("registration failed: %s", resp.Error)
			}

			fmt.Printf("registered %s\n", cfg.Username)
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := login(c); err != nil {
				return err
			}

			fmt.Printf("authenticated as %s\n", cfg.Username)
			return nil
		},
	}
}
