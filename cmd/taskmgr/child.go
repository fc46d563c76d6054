package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/taskmgr/internal/orchestrator"
)

var (
	childKind string
	childData string
)

var childCmd = &cobra.Command{
	Use:   "child <worker> exit|stop|error",
	Short: "Report a worker lifecycle event to its orchestrator",
	Long: `Mark a worker as exited, stopped or failed and deliver the event to the
orchestrator supervising it.

  exit    the worker finished; the orchestrator requests its own shutdown
  stop    an operator stopped the worker; the orchestrator keeps running
  error   the worker failed; the orchestrator fails with it

Examples:
  taskmgr child 6f1c... exit --data "done"
  taskmgr child 6f1c... error --kind operation-timeout --data "no reply"`,
	Args: cobra.ExactArgs(2),
	RunE: runChild,
}

func init() {
	childCmd.Flags().StringVar(&childKind, "kind", string(orchestrator.ErrorKindInternal), "Error kind for error events")
	childCmd.Flags().StringVar(&childData, "data", "", "Exit data or error payload")
}

func runChild(cmd *cobra.Command, args []string) error {
	workerID, event := args[0], args[1]

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	switch event {
	case "exit":
		err = a.rt.ExitWorker(ctx, workerID, []byte(childData))
	case "stop":
		err = a.rt.StopWorker(ctx, workerID)
	case "error":
		err = a.rt.FailWorker(ctx, workerID, orchestrator.ChildError{
			Kind:    orchestrator.ErrorKind(childKind),
			Payload: []byte(childData),
		})
	default:
		return fmt.Errorf("unknown event %q: expected exit, stop or error", event)
	}

	var workerErr *orchestrator.WorkerError
	if errors.As(err, &workerErr) {
		printStatus("!", fmt.Sprintf("Orchestrator failed: %v", workerErr), color.FgYellow)
		return nil
	}
	if err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Worker %s: %s delivered", workerID, event), color.FgGreen)
	return nil
}
