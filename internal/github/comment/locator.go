package comment

import (
	"context"
	"log"

	"github.com/cexll/postrun/internal/github"
)

// Find locates a previously created tracked comment for the current
// trigger context by scanning candidate comments for the workflow's
// hidden marker. A failed lookup degrades to "not found" so the caller
// creates a fresh comment instead of aborting the run.
func Find(ctx context.Context, client github.Client, trigger *github.TriggerContext, workflow string) (int64, bool) {
	if !trigger.HasEntity() {
		return 0, false
	}

	if trigger.IsReviewCommentTrigger() {
		return findInReviewThread(ctx, client, trigger, workflow)
	}

	comments, err := client.ListIssueComments(ctx, trigger.EntityNumber)
	if err != nil {
		log.Printf("[Locator] Comment lookup failed, will create a new comment: %v", err)
		return 0, false
	}

	// Newest first per the client contract.
	for _, c := range comments {
		if HasMarker(c.Body, workflow) {
			return c.ID, true
		}
	}
	return 0, false
}

// findInReviewThread restricts the candidate set to the triggering
// review-comment thread: the parent comment itself or any reply to it.
func findInReviewThread(ctx context.Context, client github.Client, trigger *github.TriggerContext, workflow string) (int64, bool) {
	comments, err := client.ListReviewComments(ctx, trigger.EntityNumber)
	if err != nil {
		log.Printf("[Locator] Review comment lookup failed, will create a new comment: %v", err)
		return 0, false
	}

	parent := trigger.ReviewCommentID
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		if c.ID != parent && c.InReplyTo != parent {
			continue
		}
		if HasMarker(c.Body, workflow) {
			return c.ID, true
		}
	}
	return 0, false
}
