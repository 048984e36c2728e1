// Package runio moves run state across CI step boundaries: inputs come
// in as environment variables, outputs go out through the platform's
// key-value output file, and the human-facing summary goes to the job
// summary file.
package runio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Fixed output/input key schema. The same keys written by the prepare
// phase come back as POSTRUN_<KEY> environment variables in the
// complete phase.
const (
	KeyEntityNumber  = "entity_number"
	KeyBaseBranch    = "base_branch"
	KeyWorkingBranch = "working_branch"
	KeyIsNewBranch   = "is_new_branch"
	KeyActionKind    = "action_kind"
	KeyCommentID     = "comment_id"
	KeyCommitSHA     = "commit_sha"
	KeyPRTitle       = "pr_title"
	KeyPRBody        = "pr_body"
	KeyPRLink        = "pr_link"
	KeyTaskTitle     = "task_title"
	KeyTaskSummary   = "task_summary"
	KeyErrorMessage  = "error_message"
	KeyJobFailed     = "job_failed"
	KeyPRBaseBranch  = "pr_base_branch"
)

// Store reads run inputs and appends run outputs.
type Store struct {
	getenv      func(string) string
	outputPath  string
	summaryPath string
}

// NewStore builds a store from the standard Actions environment.
func NewStore() *Store {
	return &Store{
		getenv:      os.Getenv,
		outputPath:  os.Getenv("GITHUB_OUTPUT"),
		summaryPath: os.Getenv("GITHUB_STEP_SUMMARY"),
	}
}

// NewStoreWithEnv builds a store with an injected environment for tests.
func NewStoreWithEnv(getenv func(string) string, outputPath, summaryPath string) *Store {
	return &Store{getenv: getenv, outputPath: outputPath, summaryPath: summaryPath}
}

// Input reads a run input for a schema key (POSTRUN_<KEY>).
func (s *Store) Input(key string) string {
	return s.getenv("POSTRUN_" + strings.ToUpper(key))
}

// InputBool reads a boolean run input; malformed values read as false.
func (s *Store) InputBool(key string) bool {
	v, err := strconv.ParseBool(s.Input(key))
	return err == nil && v
}

// InputInt reads an integer run input; malformed values read as 0.
func (s *Store) InputInt(key string) int {
	v, err := strconv.Atoi(s.Input(key))
	if err != nil {
		return 0
	}
	return v
}

// InputInt64 reads a 64-bit integer run input (comment IDs).
func (s *Store) InputInt64(key string) int64 {
	v, err := strconv.ParseInt(s.Input(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// WriteOutput appends one key-value pair to the output file. Multiline
// values use the platform's heredoc form.
func (s *Store) WriteOutput(key, value string) error {
	if s.outputPath == "" {
		return nil
	}

	f, err := os.OpenFile(s.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	var line string
	if strings.Contains(value, "\n") {
		delimiter := "POSTRUN_EOF"
		for strings.Contains(value, delimiter) {
			delimiter += "_"
		}
		line = fmt.Sprintf("%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter)
	} else {
		line = fmt.Sprintf("%s=%s\n", key, value)
	}

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write output %s: %w", key, err)
	}
	return nil
}

// WriteSummary appends markdown to the job summary file.
func (s *Store) WriteSummary(markdown string) error {
	if s.summaryPath == "" {
		return nil
	}

	f, err := os.OpenFile(s.summaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open summary file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(markdown + "\n"); err != nil {
		return fmt.Errorf("failed to write job summary: %w", err)
	}
	return nil
}
