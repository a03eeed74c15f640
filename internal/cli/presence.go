package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/YisusLuligo/chat/internal/model"
	"github.com/YisusLuligo/chat/internal/server"
)

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List currently connected users",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Do(server.Command{Op: server.OpUsers})
			if err != nil {
				return err
			}
			for _, user := range resp.Users {
				fmt.Println(user)
			}
			return nil
		},
	}
}

func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Stay connected and print events as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := login(c); err != nil {
				return err
			}

			fmt.Printf("listening as %s\n", cfg.Username)
			for {
				frame, err := c.NextEvent()
				if err != nil {
					return err
				}
				printEvent(frame.Event)
			}
		},
	}
}

func printEvent(ev model.Event) {
	ts := time.UnixMilli(ev.Timestamp).Format("15:04:05")
	switch ev.Type {
	case model.EventMessage:
		fmt.Printf("%s [%s] <%s> %s\n", ts, ev.Room, ev.From, ev.Body)
	default:
		fmt.Printf("%s * %s\n", ts, ev.Body)
	}
}
