package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/taskmgr/internal/orchestrator"
	"github.com/ShayCichocki/taskmgr/internal/state"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

var statusEvents int

var statusCmd = &cobra.Command{
	Use:   "status [orchestrator]",
	Short: "Show orchestrators and their workers",
	Long: `Without arguments, lists every orchestrator with its worker.
With an orchestrator id, shows its state, policy and recent events.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusEvents, "events", 10, "Number of recent events to show")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(14)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		return displayOrchestrator(a, args[0])
	}

	kind := models.ActorKindOrchestrator
	orchestrators, err := a.rt.Actors(&kind)
	if err != nil {
		return fmt.Errorf("list orchestrators: %w", err)
	}
	if len(orchestrators) == 0 {
		fmt.Println("No orchestrators. Run 'taskmgr create' to start one.")
		return nil
	}

	rows := [][]string{{"ID", "TASK", "STATUS", "WORKER", "AGE"}}
	for _, o := range orchestrators {
		task := "-"
		if st, err := orchestrator.DecodeState(o.State); err == nil && st.Task != "" {
			task = string(st.Task)
		}
		worker := "-"
		if children, err := a.db.ListChildren(o.ID); err == nil && len(children) > 0 {
			w := children[0]
			worker = fmt.Sprintf("%s (%s)", shortID(w.ID), w.Status)
		}
		rows = append(rows, []string{
			shortID(o.ID),
			task,
			color.New(statusColor(o.Status)).Sprint(o.Status),
			worker,
			formatDuration(time.Since(o.CreatedAt)),
		})
	}
	fmt.Println(renderTable(rows))
	return nil
}

func displayOrchestrator(a *app, id string) error {
	rec, err := a.rt.Actor(id)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Orchestrator " + rec.ID))
	field := func(label, value string) {
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
	}
	field("Status", color.New(statusColor(rec.Status)).Sprint(rec.Status))
	if rec.Reason != "" {
		field("Reason", rec.Reason)
	}
	field("Created", formatDuration(time.Since(rec.CreatedAt))+" ago")

	if st, err := orchestrator.DecodeState(rec.State); err == nil {
		worker, werr := st.Worker()
		if werr != nil {
			worker = "(not initialized)"
		}
		field("Phase", string(orchestrator.PhaseOf(st)))
		field("Worker", worker)
		if st.Task != "" {
			field("Task", string(st.Task))
		}
		if st.Directory != "" {
			field("Directory", st.Directory)
		}
		field("Policy", fmt.Sprintf("pair_generation=%t strict_initiation=%t auto_exit=%t",
			st.Policy.PairGeneration, st.Policy.StrictInitiation, st.Policy.AutoExitOnCompletion))
	} else {
		field("State", color.RedString(err.Error()))
	}

	events, err := a.rt.Events(rec.ID, statusEvents)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println(headerStyle.Render("Recent events"))
	for _, e := range events {
		fmt.Printf("  %s %-20s %s\n", e.CreatedAt.Local().Format("15:04:05"), e.Type, eventDetail(e))
	}
	return nil
}

// eventDetail keeps event lines to one short line.
func eventDetail(e state.Event) string {
	d := strings.ReplaceAll(e.Detail, "\n", " ")
	if len(d) > 80 {
		d = d[:77] + "..."
	}
	return d
}

// renderTable lays out rows in padded columns; the first row is the header.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := cellStyle.Width(widths[i] + 2)
			if r == 0 {
				style = style.Inherit(headerStyle)
			}
			cells[i] = style.Render(cell)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

// shortID trims a uuid to its first group for table display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
