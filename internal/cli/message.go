package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/YisusLuligo/chat/internal/server"
)

func newSendCmd() *cobra.Command {
	var room string

	sendCmd := &cobra.Command{
		Use:   "send <message...>",
		Short: "Send a message to a room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := login(c); err != nil {
				return err
			}

			// Fire-and-forget: no response frame comes back for a send.
			return c.Send(server.Command{
				Op:   server.OpSend,
				Room: room,
				Body: strings.Join(args, " "),
			})
		},
	}

	sendCmd.Flags().StringVarP(&room, "room", "r", "General", "Target room")
	return sendCmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <room>",
		Short: "Print a room's message history, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Do(server.Command{Op: server.OpHistory, Room: args[0]})
			if err != nil {
				return err
			}
			for _, msg := range resp.Messages {
				ts := time.UnixMilli(msg.Timestamp).Format(time.RFC3339)
				fmt.Printf("%s <%s> %s\n", ts, msg.From, msg.Body)
			}
			return nil
		},
	}
}
