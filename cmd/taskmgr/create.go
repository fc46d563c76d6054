package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
)

var (
	createParams paramsFlags
	deriveParams paramsFlags
	deriveFormat string
	derivePlan   bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task orchestrator",
	Long: `Create a task orchestrator and spawn its conversation-state worker.

Examples:
  taskmgr create --task commit --dir .
  taskmgr create --task review --description "focus on error handling"
  taskmgr create --set temperature=0.1 --set title='"Release notes"'
  taskmgr create --params create.json`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Print the worker configuration a create would produce",
	Long: `Derive the configuration document for the given inputs without creating
anything. Accepts the same flags as create.`,
	Args: cobra.NoArgs,
	RunE: runDerive,
}

func init() {
	createParams.register(createCmd)
	deriveParams.register(deriveCmd)
	deriveCmd.Flags().StringVar(&deriveFormat, "format", "json", "Output format: json or yaml")
	deriveCmd.Flags().BoolVar(&derivePlan, "plan", false, "Also print the initial message and policy")
}

func runCreate(cmd *cobra.Command, args []string) error {
	params, err := createParams.build()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.rt.Create(context.Background(), params)
	if err != nil {
		return fmt.Errorf("create orchestrator %s: %w", id, err)
	}

	rec, err := a.rt.Actor(id)
	if err != nil {
		return err
	}
	printStatus("✓", fmt.Sprintf("Created orchestrator %s", color.CyanString(id)), color.FgGreen)
	children, err := a.db.ListChildren(rec.ID)
	if err == nil && len(children) > 0 {
		fmt.Printf("  worker: %s\n", children[0].ID)
	}
	return nil
}

// toYAML renders v through its JSON form so the keys match the wire names.
func toYAML(v any) ([]byte, error) {
	data, err := protocol.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := protocol.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

// planView is the display form of a creation plan.
type planView struct {
	Document       map[string]any    `json:"document"`
	InitialMessage *string           `json:"initial_message"`
	Policy         taskconfig.Policy `json:"policy"`
}

func runDerive(cmd *cobra.Command, args []string) error {
	params, err := deriveParams.build()
	if err != nil {
		return err
	}
	create, err := taskconfig.ParseCreateParams(params)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deriver, err := cfg.Deriver()
	if err != nil {
		return err
	}

	// The real orchestrator id is only known at creation.
	plan, err := deriver.Plan("<orchestrator-id>", create)
	if err != nil {
		return err
	}
	docBytes, err := plan.Document.Encode()
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := protocol.Unmarshal(docBytes, &doc); err != nil {
		return err
	}

	var out any = doc
	if derivePlan {
		out = planView{Document: doc, InitialMessage: plan.InitialMessage, Policy: plan.Policy}
	}

	switch deriveFormat {
	case "json":
		data, err := protocol.MarshalIndent(out)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := toYAML(out)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		return errors.New("unknown format: " + deriveFormat)
	}
	return nil
}
