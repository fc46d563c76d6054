package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List task profiles",
	Long: `List the built-in task profiles merged with the configured profiles file
(profiles_file). Unknown task names fall back to the generic profile.`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	fmt.Println(renderTable(profileRows(registry)))
	return nil
}

func profileRows(registry *taskconfig.Registry) [][]string {
	rows := [][]string{{"TASK", "TITLE", "TEMP", "GIT TOOLS", "STEPS"}}
	add := func(name string, p taskconfig.Profile) {
		rows = append(rows, []string{
			name,
			p.Title,
			strconv.FormatFloat(p.Temperature, 'f', -1, 64),
			strconv.FormatBool(p.GitTools),
			strconv.Itoa(len(p.Steps)),
		})
	}
	for _, name := range registry.Names() {
		p, _ := registry.Lookup(name)
		add(string(name), p)
	}
	add("(generic)", registry.Generic())
	return rows
}
