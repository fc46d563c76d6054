package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var purgeOlderThan string

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old lifecycle events from the store",
	Long: `Delete lifecycle events recorded before the given age. Actors and their
messages are kept.

Examples:
  taskmgr purge --older-than 30d
  taskmgr purge --older-than 12h`,
	Args: cobra.NoArgs,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeOlderThan, "older-than", "30d", "Age of events to delete (Go duration or <n>d)")
}

// parseAge accepts a Go duration or a whole number of days such as "7d".
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid age %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid age %q", s)
	}
	return d, nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	age, err := parseAge(purgeOlderThan)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.db.PurgeOldEvents(age)
	if err != nil {
		return err
	}
	a.logger.Info("purged events", zap.Int64("deleted", n), zap.Duration("older_than", age))
	printStatus("✓", fmt.Sprintf("Deleted %d events older than %s", n, formatDuration(age)), color.FgGreen)
	return nil
}
