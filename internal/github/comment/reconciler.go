package comment

import (
	"context"
	"fmt"
	"log"

	"github.com/cexll/postrun/internal/action"
	"github.com/cexll/postrun/internal/github"
)

// TrackerClient is the external-tracker surface the reconciler needs.
type TrackerClient interface {
	AddComment(ctx context.Context, issueKey, text string) error
	MoveIssueToReview(ctx context.Context, issueKey string) error
}

// Reconciler creates and updates the tracked comment for a run. The
// same dispatch rule (review-comment reply vs. issue comment) is used
// for lookup, creation and update, so one logical comment is addressed
// consistently across the whole lifecycle.
type Reconciler struct {
	client        github.Client
	tracker       TrackerClient
	workflow      string
	singleComment bool
}

// NewReconciler creates a reconciler for one workflow identity.
func NewReconciler(client github.Client, workflow string, singleComment bool) *Reconciler {
	return &Reconciler{
		client:        client,
		workflow:      workflow,
		singleComment: singleComment,
	}
}

// WithTracker attaches an external tracker client.
func (r *Reconciler) WithTracker(t TrackerClient) *Reconciler {
	r.tracker = t
	return r
}

// EnsureWorking moves the tracked comment into the WORKING state at run
// start, creating it if no prior run's comment can be reused. Returns 0
// when the trigger has no entity to comment on.
func (r *Reconciler) EnsureWorking(ctx context.Context, trigger *github.TriggerContext) (int64, error) {
	if !trigger.HasEntity() {
		return 0, nil
	}

	body := EmbedMarker(WorkingBody(trigger.Actor), r.workflow)

	if r.singleComment {
		if id, ok := Find(ctx, r.client, trigger, r.workflow); ok {
			log.Printf("[Comment] Reusing tracked comment %d", id)
			if err := r.edit(ctx, trigger, id, body); err != nil {
				return 0, err
			}
			return id, nil
		}
	}

	id, err := r.create(ctx, trigger, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create tracking comment: %w", err)
	}
	log.Printf("[Comment] Created tracked comment %d", id)
	return id, nil
}

// PostCompletion writes the terminal feedback for the run: a tracker
// comment for tracker-originated triggers, otherwise an update of the
// tracked comment. Tracker failures are swallowed; tracked-comment
// failures are fatal.
func (r *Reconciler) PostCompletion(ctx context.Context, p Payload, trigger *github.TriggerContext, initCommentID int64) error {
	if trigger.IsTrackerDispatch() {
		r.postToTracker(ctx, p, trigger)
		return nil
	}

	if initCommentID == 0 {
		log.Printf("[Comment] No tracked comment for this run, skipping update")
		return nil
	}

	body := EmbedMarker(RenderTerminal(p, trigger), r.workflow)
	if err := r.edit(ctx, trigger, initCommentID, body); err != nil {
		return fmt.Errorf("failed to update tracked comment %d (possible causes: token lacks write permission, rate limit exceeded, comment was deleted, network failure): %w", initCommentID, err)
	}
	return nil
}

// postToTracker posts completion feedback to the external tracker. It
// must never fail the run: unavailability of the tracker is logged and
// swallowed.
func (r *Reconciler) postToTracker(ctx context.Context, p Payload, trigger *github.TriggerContext) {
	if r.tracker == nil {
		log.Printf("[Tracker] No tracker configured, skipping feedback for %s", trigger.TrackerIssueKey)
		return
	}

	text := PlainText(p, trigger)
	if err := r.tracker.AddComment(ctx, trigger.TrackerIssueKey, text); err != nil {
		log.Printf("[Tracker] Failed to post comment to %s: %v", trigger.TrackerIssueKey, err)
		return
	}

	if p.Success != nil && p.Success.Kind == action.CreatePR && p.Success.PRLink != "" {
		if err := r.tracker.MoveIssueToReview(ctx, trigger.TrackerIssueKey); err != nil {
			log.Printf("[Tracker] Failed to move %s to review: %v", trigger.TrackerIssueKey, err)
		}
	}
}

func (r *Reconciler) create(ctx context.Context, trigger *github.TriggerContext, body string) (int64, error) {
	if trigger.IsReviewCommentTrigger() {
		return r.client.ReplyToReviewComment(ctx, trigger.EntityNumber, trigger.ReviewCommentID, body)
	}
	return r.client.CreateIssueComment(ctx, trigger.EntityNumber, body)
}

func (r *Reconciler) edit(ctx context.Context, trigger *github.TriggerContext, commentID int64, body string) error {
	if trigger.IsReviewCommentTrigger() {
		return r.client.EditReviewComment(ctx, commentID, body)
	}
	return r.client.EditIssueComment(ctx, commentID, body)
}
