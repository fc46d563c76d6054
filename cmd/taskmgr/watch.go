package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Apply operator signal files to workers",
	Long: `Redeliver worker events that never reached their orchestrator, then watch
the signals directory for operator signal files:

  <worker>.exit    mark the worker exited (contents are the exit data)
  <worker>.stop    mark the worker stopped by an operator
  <worker>.error   fail the worker; contents are {"kind": "...", "payload": "..."}

The directory defaults to "signals" next to the store (signals.dir).`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Apply pending signals and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recovered, err := a.rt.Recover(ctx)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	if recovered > 0 {
		printStatus("↻", fmt.Sprintf("Redelivered %d worker event(s)", recovered), color.FgCyan)
	}

	sw, err := a.rt.NewSignalWatcher(a.signals)
	if err != nil {
		return err
	}

	if watchOnce {
		n, err := sw.Scan(ctx)
		if err != nil {
			return err
		}
		printStatus("✓", fmt.Sprintf("Applied %d signal(s)", n), color.FgGreen)
		return nil
	}

	printStatus("…", fmt.Sprintf("Watching %s (Ctrl+C to stop)", a.signals), color.FgCyan)
	return sw.Watch(ctx)
}
