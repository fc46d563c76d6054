package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// printResponse renders a decoded orchestrator response.
func printResponse(out []byte) error {
	resp, err := protocol.DecodeResponse(out)
	if err != nil {
		return err
	}
	switch resp.Type {
	case protocol.ResponseWorkerID:
		fmt.Println(color.CyanString(resp.ActorID))
	case protocol.ResponseSuccess:
		printStatus("✓", "success", color.FgGreen)
	case protocol.ResponseError:
		printStatus("✗", resp.Message, color.FgRed)
	}
	return nil
}

// statusColor picks a color for an actor status.
func statusColor(s models.ActorStatus) color.Attribute {
	switch s {
	case models.ActorStatusRunning:
		return color.FgGreen
	case models.ActorStatusShutdownRequested, models.ActorStatusExited:
		return color.FgCyan
	case models.ActorStatusStopped:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
