package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

var (
	requestRole string
	requestRaw  bool
)

var requestCmd = &cobra.Command{
	Use:   "request <orchestrator> worker-id|start|message <text>",
	Short: "Send a request to an orchestrator",
	Long: `Send a request and print the response.

  worker-id        print the supervised worker's id
  start            start the session with the task's opening message
  message <text>   forward a message to the worker

With --raw the second argument is sent verbatim as the request payload.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRequest,
}

var completeCmd = &cobra.Command{
	Use:   "complete <orchestrator> [summary]",
	Short: "Signal that an orchestrator's task is complete",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runComplete,
}

func init() {
	requestCmd.Flags().StringVar(&requestRole, "role", string(models.RoleUser), "Message role: user, assistant, system")
	requestCmd.Flags().BoolVar(&requestRaw, "raw", false, "Send the second argument as a raw JSON payload")
}

// buildRequest turns CLI arguments into a request payload.
func buildRequest(args []string, role string, raw bool) ([]byte, error) {
	if raw {
		return []byte(args[0]), nil
	}

	var req protocol.Request
	switch args[0] {
	case "worker-id":
		req = protocol.QueryWorkerID()
	case "start":
		req = protocol.StartSession()
	case "message":
		if len(args) < 2 {
			return nil, fmt.Errorf("message requires text")
		}
		r := models.Role(role)
		if !r.Valid() {
			return nil, fmt.Errorf("invalid role %q", role)
		}
		req = protocol.AddMessage(models.NewTextMessage(r, strings.Join(args[1:], " ")))
	default:
		return nil, fmt.Errorf("unknown request %q: expected worker-id, start or message", args[0])
	}
	return req.Encode()
}

func runRequest(cmd *cobra.Command, args []string) error {
	data, err := buildRequest(args[1:], requestRole, requestRaw)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.rt.Request(context.Background(), args[0], data)
	if err != nil {
		return err
	}
	return printResponse(out)
}

func runComplete(cmd *cobra.Command, args []string) error {
	summary := ""
	if len(args) > 1 {
		summary = args[1]
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.rt.Complete(context.Background(), args[0], summary); err != nil {
		return err
	}

	rec, err := a.rt.Actor(args[0])
	if err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Task complete, orchestrator is %s", rec.Status), color.FgGreen)
	return nil
}
