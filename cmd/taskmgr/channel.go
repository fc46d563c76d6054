package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var channelCmd = &cobra.Command{
	Use:   "channel <orchestrator> open|close|message [channel] [data]",
	Short: "Deliver a channel event to an orchestrator",
	Long: `Drive the channel hooks of an orchestrator.

  open [data]               ask the orchestrator to accept a channel
  close <channel>           report that a channel closed
  message <channel> [data]  deliver a message received on a channel

Examples:
  taskmgr channel 6f1c... open
  taskmgr channel 6f1c... message ch-1 "hello"
  taskmgr channel 6f1c... close ch-1`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChannel,
}

// channelEvent is a parsed channel command.
type channelEvent struct {
	action    string
	channelID string
	data      []byte
}

// parseChannelArgs reads the arguments that follow the orchestrator id.
func parseChannelArgs(args []string) (channelEvent, error) {
	if len(args) == 0 {
		return channelEvent{}, fmt.Errorf("missing channel action")
	}
	ev := channelEvent{action: args[0]}
	rest := args[1:]

	switch ev.action {
	case "open":
		ev.data = []byte(strings.Join(rest, " "))
	case "close":
		if len(rest) != 1 {
			return channelEvent{}, fmt.Errorf("close takes exactly one channel id")
		}
		ev.channelID = rest[0]
	case "message":
		if len(rest) == 0 {
			return channelEvent{}, fmt.Errorf("message needs a channel id")
		}
		ev.channelID = rest[0]
		ev.data = []byte(strings.Join(rest[1:], " "))
	default:
		return channelEvent{}, fmt.Errorf("unknown channel action %q: expected open, close or message", ev.action)
	}
	return ev, nil
}

func runChannel(cmd *cobra.Command, args []string) error {
	id := args[0]
	ev, err := parseChannelArgs(args[1:])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	switch ev.action {
	case "open":
		accept, err := a.rt.OpenChannel(ctx, id, ev.data)
		if err != nil {
			return err
		}
		if !accept.Accepted {
			printStatus("!", "Channel rejected", color.FgYellow)
			return nil
		}
		printStatus("✓", "Channel accepted", color.FgGreen)
		if len(accept.Message) > 0 {
			fmt.Println(string(accept.Message))
		}
		return nil
	case "close":
		err = a.rt.CloseChannel(ctx, id, ev.channelID)
	case "message":
		err = a.rt.ChannelMessage(ctx, id, ev.channelID, ev.data)
	}
	if err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Channel %s: %s delivered", ev.channelID, ev.action), color.FgGreen)
	return nil
}
