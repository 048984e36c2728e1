package comment

import (
	"context"
	"errors"
	"testing"

	"github.com/cexll/postrun/internal/github"
)

func TestAcknowledgeTriggerIssueComment(t *testing.T) {
	client := github.NewMockClient()
	trigger := issueTrigger()
	trigger.TriggerCommentID = 99

	AcknowledgeTrigger(context.Background(), client, trigger)

	if len(client.ReactionCalls) != 1 {
		t.Fatalf("reaction calls = %d, want 1", len(client.ReactionCalls))
	}
	call := client.ReactionCalls[0]
	if call.CommentID != 99 || call.Content != "eyes" || call.Review {
		t.Errorf("reaction = %+v, want eyes on issue comment 99", call)
	}
}

func TestAcknowledgeTriggerReviewComment(t *testing.T) {
	client := github.NewMockClient()
	trigger := reviewTrigger(10)
	trigger.TriggerCommentID = 10

	AcknowledgeTrigger(context.Background(), client, trigger)

	if len(client.ReactionCalls) != 1 {
		t.Fatalf("reaction calls = %d, want 1", len(client.ReactionCalls))
	}
	if !client.ReactionCalls[0].Review {
		t.Error("reaction used issue API, want review comment API")
	}
}

func TestAcknowledgeTriggerNoComment(t *testing.T) {
	client := github.NewMockClient()

	AcknowledgeTrigger(context.Background(), client, issueTrigger())

	if len(client.ReactionCalls) != 0 {
		t.Error("reaction added although no comment triggered the run")
	}
}

func TestAcknowledgeTriggerFailureIgnored(t *testing.T) {
	client := github.NewMockClient()
	client.AddIssueCommentReactionFunc = func(ctx context.Context, commentID int64, content string) error {
		return errors.New("403")
	}
	trigger := issueTrigger()
	trigger.TriggerCommentID = 99

	// Must not panic or propagate.
	AcknowledgeTrigger(context.Background(), client, trigger)
}

func TestThumbsUpReviewThread(t *testing.T) {
	client := github.NewMockClient()
	client.ListReviewCommentsFunc = func(ctx context.Context, number int) ([]github.ReviewComment, error) {
		return []github.ReviewComment{
			{ID: 10},
			{ID: 11, InReplyTo: 10},
			{ID: 20, InReplyTo: 19},
		}, nil
	}

	ThumbsUpReviewThread(context.Background(), client, reviewTrigger(10))

	if len(client.ReactionCalls) != 2 {
		t.Fatalf("reaction calls = %d, want 2 (thread members only)", len(client.ReactionCalls))
	}
	for _, call := range client.ReactionCalls {
		if call.Content != "+1" || !call.Review {
			t.Errorf("reaction = %+v, want +1 via review API", call)
		}
	}
}

func TestThumbsUpReviewThreadContinuesPastFailures(t *testing.T) {
	client := github.NewMockClient()
	client.ListReviewCommentsFunc = func(ctx context.Context, number int) ([]github.ReviewComment, error) {
		return []github.ReviewComment{{ID: 10}, {ID: 11, InReplyTo: 10}}, nil
	}
	client.AddReviewCommentReactionFunc = func(ctx context.Context, commentID int64, content string) error {
		if commentID == 10 {
			return errors.New("already reacted")
		}
		return nil
	}

	ThumbsUpReviewThread(context.Background(), client, reviewTrigger(10))

	if len(client.ReactionCalls) != 2 {
		t.Errorf("reaction calls = %d, want loop to continue past a failure", len(client.ReactionCalls))
	}
}

func TestThumbsUpNotAReviewTrigger(t *testing.T) {
	client := github.NewMockClient()
	ThumbsUpReviewThread(context.Background(), client, issueTrigger())

	if len(client.ReactionCalls) != 0 {
		t.Error("reactions added outside a review-comment trigger")
	}
}
