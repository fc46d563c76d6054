package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
)

// paramsFlags are the creation inputs shared by create and derive.
type paramsFlags struct {
	task        string
	directory   string
	description string
	file        string
	sets        []string
}

func (p *paramsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.task, "task", "", "Task name: commit, review, rebase, analyze, cleanup")
	cmd.Flags().StringVar(&p.directory, "dir", "", "Working directory for the task")
	cmd.Flags().StringVar(&p.description, "description", "", "Free-text task description")
	cmd.Flags().StringVar(&p.file, "params", "", "JSON file with creation parameters")
	cmd.Flags().StringArrayVar(&p.sets, "set", nil, "Override a field as key=<json> (repeatable)")
}

// build merges the params file, --set overrides and the named flags, in that
// order, into one creation payload.
func (p *paramsFlags) build() ([]byte, error) {
	fields := map[string]json.RawMessage{}

	if p.file != "" {
		data, err := os.ReadFile(p.file)
		if err != nil {
			return nil, fmt.Errorf("read params: %w", err)
		}
		if err := protocol.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("parse params %s: %w", p.file, err)
		}
	}

	for _, s := range p.sets {
		key, value, err := parseSet(s)
		if err != nil {
			return nil, err
		}
		fields[key] = value
	}

	for key, value := range map[string]string{
		"task":             p.task,
		"directory":        p.directory,
		"task_description": p.description,
	} {
		if value == "" {
			continue
		}
		raw, err := protocol.Marshal(value)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}

	if len(fields) == 0 {
		return nil, nil
	}
	return protocol.Marshal(fields)
}

// parseSet splits key=value. A value that is not valid JSON is taken as a
// string.
func parseSet(s string) (string, json.RawMessage, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid --set %q: expected key=value", s)
	}
	if sonic.Valid([]byte(value)) {
		return key, json.RawMessage(value), nil
	}
	raw, err := protocol.Marshal(value)
	if err != nil {
		return "", nil, err
	}
	return key, raw, nil
}
