// Package taskconfig derives the configuration document used to spawn a
// conversation-state worker from a task profile and caller overrides.
package taskconfig

import "github.com/ShayCichocki/taskmgr/pkg/models"

// Profile holds the defaults for one task name.
type Profile struct {
	// Name is the task name the profile is keyed by. Empty for the generic profile.
	Name models.TaskName `yaml:"name"`
	// Title and Description are copied into the configuration document.
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// SystemPrompt is the base prompt used when the caller supplies none.
	SystemPrompt string `yaml:"system_prompt"`
	// Steps are appended to the prompt as numbered instructions.
	Steps []string `yaml:"steps"`
	// Temperature is the default sampling temperature.
	Temperature float64 `yaml:"temperature"`
	// GitTools adds the version-control tool server to the default list.
	GitTools bool `yaml:"git_tools"`
	// InitialMessage is the canned opening message for start-session.
	InitialMessage string `yaml:"initial_message"`
	// StrictInitiation surfaces start-session send failures as errors.
	StrictInitiation bool `yaml:"strict_initiation"`
}

const (
	// DefaultMaxTokens applies to every profile unless overridden.
	DefaultMaxTokens uint32 = 8192

	// fallbackInitialMessage is used for task names with no profile.
	fallbackInitialMessage = "Please proceed with the assigned task."

	mandatoryCompletion = "\n\nIMPORTANT: When you have completed your assigned task, you MUST call the 'task_complete' tool to signal that the work is finished. This allows the system to properly conclude the task session."

	optionalCompletion = "\n\nA 'task_complete' tool is available. If you are asked to signal when a piece of work is finished, use it once that work is done."
)

var genericProfile = Profile{
	Title:        "Task Assistant",
	Description:  "General-purpose assistant for completing assigned tasks",
	SystemPrompt: "You are an AI assistant that helps users complete tasks efficiently. You have access to various tools and can help with a wide range of activities.",
	Temperature:  0.7,
}

const gitAssistantPrompt = `You are a git assistant working inside a local repository. You have access to git tools that can inspect the working tree, read history, stage files, and create commits.

Work carefully and explain what you are about to do before running commands that rewrite history or discard changes. Never force-push or delete unmerged work unless the user explicitly asks for it.`

var builtinProfiles = []Profile{
	{
		Name:         models.TaskCommit,
		Title:        "Git Commit Assistant",
		Description:  "Stages pending changes and writes well-structured commits",
		SystemPrompt: gitAssistantPrompt,
		Steps: []string{
			"Inspect the pending changes with git status and git diff.",
			"Group related changes together; stage only the files that belong in one logical commit.",
			"Write a commit message with a short summary line (under 72 characters) and a body explaining what changed and why.",
			"Create the commit and confirm it with git log -1.",
			"Repeat for any remaining groups of changes.",
		},
		Temperature:      0.3,
		GitTools:         true,
		InitialMessage:   "Please review the current changes in the repository and create well-structured commits for them.",
		StrictInitiation: true,
	},
	{
		Name:         models.TaskReview,
		Title:        "Git Review Assistant",
		Description:  "Reviews pending changes and recent commits",
		SystemPrompt: gitAssistantPrompt,
		Steps: []string{
			"List the commits and uncommitted changes that are in scope for the review.",
			"Read each diff and note correctness problems, missing tests, and unclear code.",
			"Group your findings by severity and reference files and lines.",
			"Summarize the review with a clear recommendation.",
		},
		Temperature:      0.5,
		GitTools:         true,
		InitialMessage:   "Please review the recent changes in the repository and report any issues you find.",
		StrictInitiation: true,
	},
	{
		Name:         models.TaskRebase,
		Title:        "Git Rebase Assistant",
		Description:  "Rebases the current branch and resolves conflicts",
		SystemPrompt: gitAssistantPrompt,
		Steps: []string{
			"Identify the current branch and its upstream or base branch.",
			"Make sure the working tree is clean before starting; stash changes if needed.",
			"Run the rebase and resolve each conflict, keeping the intent of both sides.",
			"Verify the result builds and the history reads cleanly.",
		},
		Temperature:      0.2,
		GitTools:         true,
		InitialMessage:   "Please rebase the current branch onto its base branch, resolving any conflicts carefully.",
		StrictInitiation: true,
	},
	{
		Name:         models.TaskAnalyze,
		Title:        "Git Analysis Assistant",
		Description:  "Analyzes repository structure and history",
		SystemPrompt: gitAssistantPrompt,
		Steps: []string{
			"Survey the repository layout and the main components.",
			"Read the recent history to find active areas and frequent contributors.",
			"Identify hotspots, large files, and long-lived branches.",
			"Summarize your findings in a short report.",
		},
		Temperature:      0.5,
		GitTools:         true,
		InitialMessage:   "Please analyze the repository structure and recent history and summarize your findings.",
		StrictInitiation: true,
	},
	{
		Name:         models.TaskCleanup,
		Title:        "Git Cleanup Assistant",
		Description:  "Prunes stale branches and repository clutter",
		SystemPrompt: gitAssistantPrompt,
		Steps: []string{
			"List local and remote branches and find the ones already merged or long inactive.",
			"Find untracked build artifacts and other clutter.",
			"Propose the cleanup plan before deleting anything.",
			"Apply the cleanup and report what was removed.",
		},
		Temperature:      0.3,
		GitTools:         true,
		InitialMessage:   "Please identify and clean up stale branches and other clutter in the repository.",
		StrictInitiation: true,
	},
}
