package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YisusLuligo/chat/internal/server"
)

func newRoomCmd() *cobra.Command {
	roomCmd := &cobra.Command{
		Use:   "room",
		Short: "Room operations",
	}

	roomCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Do(server.Command{Op: server.OpRooms})
			if err != nil {
				return err
			}
			for _, room := range resp.Rooms {
				fmt.Println(room)
			}
			return nil
		},
	})

	roomCmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := login(c); err != nil {
				return err
			}

			resp, err := c.Do(server.Command{Op: server.OpCreateRoom, Room: args[0]})
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("create failed: %s", resp.Error)
			}
			fmt.Printf("created room %s\n", args[0])
			return nil
		},
	})

	roomCmd.AddCommand(&cobra.Command{
		Use:   "join <name>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := login(c); err != nil {
				return err
			}

			resp, err := c.Do(server.Command{Op: server.OpJoinRoom, Room: args[0]})
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("join failed: %s", resp.Error)
			}
			fmt.Printf("joined room %s\n", args[0])
			return nil
		},
	})

	return roomCmd
}
