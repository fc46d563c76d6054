package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
)

var outboxCmd = &cobra.Command{
	Use:   "outbox <worker>",
	Short: "List the messages delivered to a worker",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutbox,
}

func runOutbox(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	msgs, err := a.rt.Outbox(args[0])
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return nil
	}

	for _, m := range msgs {
		fmt.Printf("%s %s\n", color.New(color.Faint).Sprintf("#%d", m.ID), describeWorkerMessage(m.Payload))
	}
	return nil
}

// describeWorkerMessage renders a worker request on one line.
func describeWorkerMessage(payload []byte) string {
	req, err := protocol.DecodeWorkerRequest(payload)
	if err != nil {
		return string(payload)
	}
	if req.Message == nil {
		return color.CyanString(string(req.Type))
	}
	return fmt.Sprintf("%s [%s] %s", color.CyanString(string(req.Type)), req.Message.Role, req.Message.Text())
}
