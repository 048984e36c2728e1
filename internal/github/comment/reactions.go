package comment

import (
	"context"
	"log"

	"github.com/cexll/postrun/internal/github"
)

// AcknowledgeTrigger adds an eyes reaction to the comment that started
// the run. Best effort: a failure is logged and ignored.
func AcknowledgeTrigger(ctx context.Context, client github.Client, trigger *github.TriggerContext) {
	if trigger.TriggerCommentID == 0 {
		return
	}

	var err error
	if trigger.IsReviewCommentTrigger() {
		err = client.AddReviewCommentReaction(ctx, trigger.TriggerCommentID, "eyes")
	} else {
		err = client.AddIssueCommentReaction(ctx, trigger.TriggerCommentID, "eyes")
	}
	if err != nil {
		log.Printf("[Reaction] Failed to acknowledge trigger comment %d: %v", trigger.TriggerCommentID, err)
	}
}

// ThumbsUpReviewThread adds a thumbs-up to every comment in the
// triggering review thread. The loop continues past individual
// failures; partial completion is acceptable.
func ThumbsUpReviewThread(ctx context.Context, client github.Client, trigger *github.TriggerContext) {
	if !trigger.IsReviewCommentTrigger() {
		return
	}

	comments, err := client.ListReviewComments(ctx, trigger.EntityNumber)
	if err != nil {
		log.Printf("[Reaction] Failed to list review comments: %v", err)
		return
	}

	parent := trigger.ReviewCommentID
	for _, c := range comments {
		if c.ID != parent && c.InReplyTo != parent {
			continue
		}
		if err := client.AddReviewCommentReaction(ctx, c.ID, "+1"); err != nil {
			log.Printf("[Reaction] Failed to react to review comment %d: %v", c.ID, err)
		}
	}
}
