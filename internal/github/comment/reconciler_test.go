package comment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cexll/postrun/internal/action"
	"github.com/cexll/postrun/internal/github"
)

type mockTracker struct {
	AddCommentFunc        func(ctx context.Context, issueKey, text string) error
	MoveIssueToReviewFunc func(ctx context.Context, issueKey string) error

	AddCommentCalls []struct {
		IssueKey string
		Text     string
	}
	MoveCalls []string
}

func (m *mockTracker) AddComment(ctx context.Context, issueKey, text string) error {
	m.AddCommentCalls = append(m.AddCommentCalls, struct {
		IssueKey string
		Text     string
	}{issueKey, text})
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, issueKey, text)
	}
	return nil
}

func (m *mockTracker) MoveIssueToReview(ctx context.Context, issueKey string) error {
	m.MoveCalls = append(m.MoveCalls, issueKey)
	if m.MoveIssueToReviewFunc != nil {
		return m.MoveIssueToReviewFunc(ctx, issueKey)
	}
	return nil
}

func trackerTrigger() *github.TriggerContext {
	return &github.TriggerContext{
		Event:           github.EventTrackerDispatch,
		TrackerIssueKey: "PROJ-9",
		RunID:           "1",
		Repository:      github.Repository{Owner: "octo", Name: "repo"},
		ServerURL:       "https://github.com",
	}
}

func TestEnsureWorkingCreatesComment(t *testing.T) {
	client := github.NewMockClient()
	r := NewReconciler(client, "agent", false)

	id, err := r.EnsureWorking(context.Background(), issueTrigger())
	if err != nil {
		t.Fatalf("EnsureWorking() error = %v", err)
	}
	if id != 12345 {
		t.Errorf("id = %d, want mock default 12345", id)
	}

	if len(client.CreateIssueCommentCalls) != 1 {
		t.Fatalf("create calls = %d, want 1", len(client.CreateIssueCommentCalls))
	}
	body := client.CreateIssueCommentCalls[0].Body
	if !HasMarker(body, "agent") {
		t.Error("created comment is missing the workflow marker")
	}
	if !strings.Contains(body, "working on") {
		t.Errorf("body = %q, want working state text", body)
	}
}

func TestEnsureWorkingNoEntity(t *testing.T) {
	client := github.NewMockClient()
	r := NewReconciler(client, "agent", true)

	id, err := r.EnsureWorking(context.Background(), &github.TriggerContext{Event: github.EventPush})
	if err != nil {
		t.Fatalf("EnsureWorking() error = %v", err)
	}
	if id != 0 {
		t.Errorf("id = %d, want 0 when there is nothing to comment on", id)
	}
	if len(client.CreateIssueCommentCalls) != 0 {
		t.Error("comment created for an entity-less trigger")
	}
}

func TestEnsureWorkingSingleCommentReuses(t *testing.T) {
	client := github.NewMockClient()
	client.ListIssueCommentsFunc = func(ctx context.Context, number int) ([]github.IssueComment, error) {
		return []github.IssueComment{{ID: 777, Body: EmbedMarker("prior run", "agent")}}, nil
	}
	r := NewReconciler(client, "agent", true)

	id, err := r.EnsureWorking(context.Background(), issueTrigger())
	if err != nil {
		t.Fatalf("EnsureWorking() error = %v", err)
	}
	if id != 777 {
		t.Errorf("id = %d, want reused comment 777", id)
	}
	if len(client.CreateIssueCommentCalls) != 0 {
		t.Error("new comment created despite a reusable one")
	}
	if len(client.EditIssueCommentCalls) != 1 {
		t.Fatalf("edit calls = %d, want 1", len(client.EditIssueCommentCalls))
	}
}

func TestEnsureWorkingMultiCommentAlwaysCreates(t *testing.T) {
	client := github.NewMockClient()
	client.ListIssueCommentsFunc = func(ctx context.Context, number int) ([]github.IssueComment, error) {
		t.Error("lookup performed although single-comment mode is off")
		return nil, nil
	}
	r := NewReconciler(client, "agent", false)

	if _, err := r.EnsureWorking(context.Background(), issueTrigger()); err != nil {
		t.Fatalf("EnsureWorking() error = %v", err)
	}
	if len(client.CreateIssueCommentCalls) != 1 {
		t.Errorf("create calls = %d, want 1", len(client.CreateIssueCommentCalls))
	}
}

func TestEnsureWorkingCreateFailureIsFatal(t *testing.T) {
	client := github.NewMockClient()
	client.CreateIssueCommentFunc = func(ctx context.Context, number int, body string) (int64, error) {
		return 0, errors.New("403 forbidden")
	}
	r := NewReconciler(client, "agent", false)

	if _, err := r.EnsureWorking(context.Background(), issueTrigger()); err == nil {
		t.Error("EnsureWorking() error = nil, want fatal on create failure")
	}
}

func TestEnsureWorkingReviewThreadReplies(t *testing.T) {
	client := github.NewMockClient()
	r := NewReconciler(client, "agent", false)

	id, err := r.EnsureWorking(context.Background(), reviewTrigger(10))
	if err != nil {
		t.Fatalf("EnsureWorking() error = %v", err)
	}
	if id != 67890 {
		t.Errorf("id = %d, want mock reply id", id)
	}
	if len(client.ReplyToReviewCommentCalls) != 1 {
		t.Fatalf("reply calls = %d, want 1", len(client.ReplyToReviewCommentCalls))
	}
	if client.ReplyToReviewCommentCalls[0].CommentID != 10 {
		t.Errorf("replied to %d, want parent 10", client.ReplyToReviewCommentCalls[0].CommentID)
	}
	if len(client.CreateIssueCommentCalls) != 0 {
		t.Error("issue comment created for a review-thread trigger")
	}
}

func TestPostCompletionUpdatesTrackedComment(t *testing.T) {
	client := github.NewMockClient()
	r := NewReconciler(client, "agent", true)

	trigger := issueTrigger()
	trigger.RunID = "5"
	trigger.ServerURL = "https://github.com"
	trigger.Repository = github.Repository{Owner: "octo", Name: "repo"}

	p := NewSuccess(SuccessFeedback{Kind: action.CreatePR, PRLink: "https://github.com/octo/repo/pull/8"})
	if err := r.PostCompletion(context.Background(), p, trigger, 555); err != nil {
		t.Fatalf("PostCompletion() error = %v", err)
	}

	if len(client.EditIssueCommentCalls) != 1 {
		t.Fatalf("edit calls = %d, want 1", len(client.EditIssueCommentCalls))
	}
	call := client.EditIssueCommentCalls[0]
	if call.CommentID != 555 {
		t.Errorf("edited comment %d, want 555", call.CommentID)
	}
	if !HasMarker(call.Body, "agent") {
		t.Error("updated body is missing the workflow marker")
	}
	if !strings.Contains(call.Body, "pull/8") {
		t.Errorf("body = %q, want PR link", call.Body)
	}
}

func TestPostCompletionWithoutInitialComment(t *testing.T) {
	client := github.NewMockClient()
	r := NewReconciler(client, "agent", true)

	trigger := issueTrigger()
	p := NewSuccess(SuccessFeedback{Kind: action.WriteComment, Summary: "done"})

	if err := r.PostCompletion(context.Background(), p, trigger, 0); err != nil {
		t.Fatalf("PostCompletion() error = %v", err)
	}

	if len(client.EditIssueCommentCalls) != 0 || len(client.CreateIssueCommentCalls) != 0 {
		t.Error("comment call made although no tracked comment exists")
	}
}

func TestPostCompletionEditFailureIsFatal(t *testing.T) {
	client := github.NewMockClient()
	client.EditIssueCommentFunc = func(ctx context.Context, commentID int64, body string) error {
		return errors.New("404 comment deleted")
	}
	r := NewReconciler(client, "agent", true)

	trigger := issueTrigger()
	trigger.Repository = github.Repository{Owner: "octo", Name: "repo"}
	p := NewFailure("boom")

	err := r.PostCompletion(context.Background(), p, trigger, 555)
	if err == nil {
		t.Fatal("PostCompletion() error = nil, want fatal on edit failure")
	}
	if !strings.Contains(err.Error(), "possible causes") {
		t.Errorf("error = %v, want enumerated causes", err)
	}
}

func TestPostCompletionReviewThreadEdits(t *testing.T) {
	client := github.NewMockClient()
	r := NewReconciler(client, "agent", true)

	trigger := reviewTrigger(10)
	trigger.Repository = github.Repository{Owner: "octo", Name: "repo"}
	p := NewSuccess(SuccessFeedback{Kind: action.WriteComment, Summary: "reviewed"})

	if err := r.PostCompletion(context.Background(), p, trigger, 11); err != nil {
		t.Fatalf("PostCompletion() error = %v", err)
	}

	if len(client.EditReviewCommentCalls) != 1 {
		t.Fatalf("review edit calls = %d, want 1", len(client.EditReviewCommentCalls))
	}
	if len(client.EditIssueCommentCalls) != 0 {
		t.Error("issue comment API used for a review-thread trigger")
	}
}

func TestPostCompletionTrackerDispatch(t *testing.T) {
	client := github.NewMockClient()
	tracker := &mockTracker{}
	r := NewReconciler(client, "agent", true).WithTracker(tracker)

	p := NewSuccess(SuccessFeedback{Kind: action.CreatePR, PRLink: "https://github.com/octo/repo/pull/3"})
	if err := r.PostCompletion(context.Background(), p, trackerTrigger(), 0); err != nil {
		t.Fatalf("PostCompletion() error = %v", err)
	}

	if len(tracker.AddCommentCalls) != 1 {
		t.Fatalf("tracker comments = %d, want 1", len(tracker.AddCommentCalls))
	}
	if tracker.AddCommentCalls[0].IssueKey != "PROJ-9" {
		t.Errorf("issue key = %q, want PROJ-9", tracker.AddCommentCalls[0].IssueKey)
	}
	if len(tracker.MoveCalls) != 1 {
		t.Errorf("move calls = %d, want transition to review after PR creation", len(tracker.MoveCalls))
	}
	if len(client.EditIssueCommentCalls) != 0 {
		t.Error("hosting comment updated for a tracker dispatch")
	}
}

func TestPostCompletionTrackerFailureSwallowed(t *testing.T) {
	tracker := &mockTracker{
		AddCommentFunc: func(ctx context.Context, issueKey, text string) error {
			return errors.New("tracker down")
		},
	}
	r := NewReconciler(github.NewMockClient(), "agent", true).WithTracker(tracker)

	p := NewFailure("task blew up")
	if err := r.PostCompletion(context.Background(), p, trackerTrigger(), 0); err != nil {
		t.Errorf("PostCompletion() error = %v, want tracker failures swallowed", err)
	}
}

func TestPostCompletionTrackerNoMoveWithoutPR(t *testing.T) {
	tracker := &mockTracker{}
	r := NewReconciler(github.NewMockClient(), "agent", true).WithTracker(tracker)

	p := NewSuccess(SuccessFeedback{Kind: action.WriteComment, Summary: "analysis only"})
	if err := r.PostCompletion(context.Background(), p, trackerTrigger(), 0); err != nil {
		t.Fatalf("PostCompletion() error = %v", err)
	}
	if len(tracker.MoveCalls) != 0 {
		t.Errorf("move calls = %d, want 0 without a created PR", len(tracker.MoveCalls))
	}
}
