package github

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// EventKind identifies the CI event that started the run.
type EventKind string

const (
	EventIssueComment             EventKind = "issue_comment"
	EventPullRequest              EventKind = "pull_request"
	EventPullRequestReview        EventKind = "pull_request_review"
	EventPullRequestReviewComment EventKind = "pull_request_review_comment"
	EventPush                     EventKind = "push"
	EventWorkflowDispatch         EventKind = "workflow_dispatch"
	EventSchedule                 EventKind = "schedule"
	EventTrackerDispatch          EventKind = "repository_dispatch"
)

// Repository identifies the repository the run operates on.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
}

// FullName returns owner/name.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// TriggerContext is an immutable snapshot of the event that started the
// run. It is built once at process start from the Actions environment and
// the serialized event payload, and passed by reference everywhere.
type TriggerContext struct {
	Event      EventKind
	Repository Repository
	Actor      string
	Workflow   string
	RunID      string
	ServerURL  string

	// EntityNumber is 0 when the trigger has no issue or pull request
	// attached (push, schedule, plain dispatch).
	EntityNumber int
	IsPR         bool

	// Branch hints from the payload, when present.
	BaseBranch string
	HeadBranch string

	// PushedRef is the branch name of the pushed ref for push events.
	PushedRef string

	// TriggerCommentID is the comment that triggered the run, if any.
	// ReviewCommentID is set for review-comment triggers and scopes the
	// tracked comment to that review thread.
	TriggerCommentID int64
	ReviewCommentID  int64

	// TrackerIssueKey is set for external-tracker dispatches.
	TrackerIssueKey string
}

// ParseTriggerContext builds a TriggerContext from the standard Actions
// environment (GITHUB_EVENT_NAME, GITHUB_EVENT_PATH and friends).
func ParseTriggerContext() (*TriggerContext, error) {
	eventName := os.Getenv("GITHUB_EVENT_NAME")
	if eventName == "" {
		return nil, fmt.Errorf("GITHUB_EVENT_NAME is not set")
	}

	var payload []byte
	if path := os.Getenv("GITHUB_EVENT_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read event payload: %w", err)
		}
		payload = data
	}

	return NewTriggerContext(eventName, payload, os.Getenv)
}

// NewTriggerContext parses a trigger context from an event name, a raw
// JSON payload and an environment lookup. The lookup is injectable so
// tests can supply a fixed environment.
func NewTriggerContext(eventName string, payload []byte, getenv func(string) string) (*TriggerContext, error) {
	tc := &TriggerContext{
		Event:     EventKind(eventName),
		Actor:     getenv("GITHUB_ACTOR"),
		Workflow:  getenv("GITHUB_WORKFLOW"),
		RunID:     getenv("GITHUB_RUN_ID"),
		ServerURL: getenv("GITHUB_SERVER_URL"),
	}
	if tc.ServerURL == "" {
		tc.ServerURL = "https://github.com"
	}

	if full := getenv("GITHUB_REPOSITORY"); full != "" {
		parts := strings.SplitN(full, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid GITHUB_REPOSITORY: %s", full)
		}
		tc.Repository.Owner = parts[0]
		tc.Repository.Name = parts[1]
	}

	var data map[string]interface{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("failed to parse event payload: %w", err)
		}
	}

	if repo, ok := data["repository"].(map[string]interface{}); ok {
		tc.Repository.DefaultBranch = getStringField(repo, "default_branch")
		if tc.Repository.Owner == "" {
			tc.Repository.Owner = getStringField(repo, "owner", "login")
			tc.Repository.Name = getStringField(repo, "name")
		}
	}

	switch tc.Event {
	case EventIssueComment:
		parseIssueCommentTrigger(tc, data)
	case EventPullRequest, EventPullRequestReview:
		parsePullRequestTrigger(tc, data)
	case EventPullRequestReviewComment:
		parsePullRequestTrigger(tc, data)
		if comment, ok := data["comment"].(map[string]interface{}); ok {
			tc.TriggerCommentID = int64(getNumberField(comment, "id"))
			tc.ReviewCommentID = tc.TriggerCommentID
		}
	case EventPush:
		tc.PushedRef = strings.TrimPrefix(getStringField(data, "ref"), "refs/heads/")
	case EventTrackerDispatch:
		if cp, ok := data["client_payload"].(map[string]interface{}); ok {
			tc.TrackerIssueKey = getStringField(cp, "issue_key")
			if n := int(getNumberField(cp, "issue_number")); n > 0 {
				tc.EntityNumber = n
			}
		}
	case EventWorkflowDispatch, EventSchedule:
		// No entity attached.
	default:
		return nil, fmt.Errorf("unsupported event type: %s", eventName)
	}

	return tc, nil
}

func parseIssueCommentTrigger(tc *TriggerContext, data map[string]interface{}) {
	if comment, ok := data["comment"].(map[string]interface{}); ok {
		tc.TriggerCommentID = int64(getNumberField(comment, "id"))
	}

	if issue, ok := data["issue"].(map[string]interface{}); ok {
		tc.EntityNumber = int(getNumberField(issue, "number"))
		if pr, hasPR := issue["pull_request"]; hasPR && pr != nil {
			tc.IsPR = true
		}
	}
}

func parsePullRequestTrigger(tc *TriggerContext, data map[string]interface{}) {
	tc.IsPR = true
	if pr, ok := data["pull_request"].(map[string]interface{}); ok {
		tc.EntityNumber = int(getNumberField(pr, "number"))
		if base, ok := pr["base"].(map[string]interface{}); ok {
			tc.BaseBranch = getStringField(base, "ref")
		}
		if head, ok := pr["head"].(map[string]interface{}); ok {
			tc.HeadBranch = getStringField(head, "ref")
		}
	}
}

// HasEntity reports whether the trigger carries an issue or PR number.
func (tc *TriggerContext) HasEntity() bool { return tc.EntityNumber > 0 }

// IsPullRequestContext reports whether the run operates on a pull request.
func (tc *TriggerContext) IsPullRequestContext() bool { return tc.IsPR }

// IsReviewCommentTrigger reports whether the run was started from a
// review-comment thread.
func (tc *TriggerContext) IsReviewCommentTrigger() bool {
	return tc.Event == EventPullRequestReviewComment && tc.ReviewCommentID > 0
}

// IsTrackerDispatch reports whether the run was started by the external
// issue tracker rather than a native hosting-platform event.
func (tc *TriggerContext) IsTrackerDispatch() bool {
	return tc.Event == EventTrackerDispatch && tc.TrackerIssueKey != ""
}

// EntityKind returns "pr" or "issue" for branch naming.
func (tc *TriggerContext) EntityKind() string {
	if tc.IsPR {
		return "pr"
	}
	return "issue"
}

// RunURL returns the link to this workflow run.
func (tc *TriggerContext) RunURL() string {
	return fmt.Sprintf("%s/%s/actions/runs/%s", tc.ServerURL, tc.Repository.FullName(), tc.RunID)
}

// Helper functions for safe map access
func getStringField(data map[string]interface{}, keys ...string) string {
	current := data
	for i, key := range keys {
		if i == len(keys)-1 {
			if val, ok := current[key].(string); ok {
				return val
			}
			return ""
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return ""
		}
	}
	return ""
}

func getNumberField(data map[string]interface{}, keys ...string) float64 {
	current := data
	for i, key := range keys {
		if i == len(keys)-1 {
			if val, ok := current[key].(float64); ok {
				return val
			}
			return 0
		}
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return 0
		}
	}
	return 0
}
