package models

// TaskName selects a task profile. The empty name means no task was assigned
// and the orchestrator runs as a general-purpose assistant.
type TaskName string

const (
	// TaskNone is the absent task name.
	TaskNone TaskName = ""
	// TaskCommit stages and commits pending changes.
	TaskCommit TaskName = "commit"
	// TaskReview reviews pending changes or recent commits.
	TaskReview TaskName = "review"
	// TaskRebase rebases the current branch.
	TaskRebase TaskName = "rebase"
	// TaskAnalyze analyzes repository history and structure.
	TaskAnalyze TaskName = "analyze"
	// TaskCleanup prunes stale branches and repository clutter.
	TaskCleanup TaskName = "cleanup"
)

// Valid returns true if the task name is one of the built-in profiles.
// The absent name is not valid; use IsSet to distinguish it.
func (n TaskName) Valid() bool {
	switch n {
	case TaskCommit, TaskReview, TaskRebase, TaskAnalyze, TaskCleanup:
		return true
	default:
		return false
	}
}

// IsSet returns true if any task name was supplied, known or not.
func (n TaskName) IsSet() bool {
	return n != TaskNone
}

// TaskProfile is the declarative description of the work to perform.
// It is supplied once when the orchestrator is created.
type TaskProfile struct {
	// Task selects the profile; may be empty or an unknown name.
	Task TaskName `json:"task,omitempty"`
	// Description is free text describing the task.
	Description string `json:"task_description,omitempty"`
	// Directory is the working directory hint for the worker.
	Directory string `json:"directory,omitempty"`
}
