package main

import (
	"context"
	"fmt"
	"log"

	"github.com/cexll/postrun/internal/action"
	"github.com/cexll/postrun/internal/branch"
	"github.com/cexll/postrun/internal/config"
	"github.com/cexll/postrun/internal/git"
	"github.com/cexll/postrun/internal/github"
	"github.com/cexll/postrun/internal/github/comment"
	"github.com/cexll/postrun/internal/runio"
	"github.com/cexll/postrun/internal/tracker"
)

// runComplete runs after task execution: it probes the repository,
// classifies the outcome into an action kind, optionally creates the
// pull request, and reconciles the tracked comment (or posts to the
// external tracker).
func runComplete(ctx context.Context, cfg *config.Config, trigger *github.TriggerContext, client github.Client, store *runio.Store) error {
	runner := &git.RealRunner{}
	probe := git.NewProbe(runner, workdir())

	info := &branch.Info{
		BaseBranch:     store.Input(runio.KeyBaseBranch),
		WorkingBranch:  store.Input(runio.KeyWorkingBranch),
		IsNewBranch:    store.InputBool(runio.KeyIsNewBranch),
		PRBaseOverride: store.Input(runio.KeyPRBaseBranch),
	}

	kind := action.Resolve(trigger, info, probe, cfg.SilentMode)
	log.Printf("Resolved action: %s", kind)
	if err := store.WriteOutput(runio.KeyActionKind, string(kind)); err != nil {
		return fmt.Errorf("failed to publish action kind: %w", err)
	}

	payload := buildPayload(ctx, cfg, trigger, client, store, info, kind)

	if !cfg.SilentMode {
		reconciler := comment.NewReconciler(client, trigger.Workflow, cfg.SingleComment)
		if cfg.TrackerEnabled() {
			reconciler.WithTracker(tracker.NewRESTClient(
				cfg.TrackerBaseURL, cfg.TrackerUser, cfg.TrackerToken, cfg.TrackerReviewStatus))
		}

		commentID := store.InputInt64(runio.KeyCommentID)
		if err := reconciler.PostCompletion(ctx, payload, trigger, commentID); err != nil {
			return err
		}

		if !payload.Failed() {
			comment.ThumbsUpReviewThread(ctx, client, trigger)
		}
	}

	return store.WriteSummary(renderSummary(payload, info, kind))
}

// buildPayload selects the feedback variant from the job-failed flag and
// fills it from the run inputs. PR auto-creation happens here so the
// success body can carry the real link.
func buildPayload(ctx context.Context, cfg *config.Config, trigger *github.TriggerContext, client github.Client, store *runio.Store, info *branch.Info, kind action.Kind) comment.Payload {
	if store.InputBool(runio.KeyJobFailed) {
		message := store.Input(runio.KeyErrorMessage)
		if message == "" && info.WorkingBranch != "" {
			message = github.FailureHint(ctx, client, info.WorkingBranch)
		}
		return comment.NewFailure(message)
	}

	success := comment.SuccessFeedback{
		Kind:          kind,
		PRLink:        store.Input(runio.KeyPRLink),
		CommitSHA:     store.Input(runio.KeyCommitSHA),
		Title:         store.Input(runio.KeyTaskTitle),
		Summary:       store.Input(runio.KeyTaskSummary),
		WorkingBranch: info.WorkingBranch,
		BaseBranch:    info.BaseBranch,
	}

	if kind == action.CreatePR && success.PRLink == "" && cfg.AutoCreatePR && !cfg.SilentMode {
		if link := createPullRequest(ctx, trigger, client, store, info, success); link != "" {
			success.PRLink = link
		}
	}

	return comment.NewSuccess(success)
}

// createPullRequest opens the PR for a new working branch. Failure here
// degrades to the manual-PR comment template rather than failing the run.
func createPullRequest(ctx context.Context, trigger *github.TriggerContext, client github.Client, store *runio.Store, info *branch.Info, success comment.SuccessFeedback) string {
	base := info.PRBaseOverride
	if base == "" {
		base = info.BaseBranch
	}

	title := store.Input(runio.KeyPRTitle)
	if title == "" {
		title = success.Title
	}
	if title == "" {
		title = fmt.Sprintf("Changes for %s #%d", trigger.EntityKind(), trigger.EntityNumber)
	}

	body := store.Input(runio.KeyPRBody)
	if body == "" {
		body = success.Summary
	}

	pr, err := client.CreatePullRequest(ctx, info.WorkingBranch, base, title, body)
	if err != nil {
		log.Printf("PR creation failed, falling back to manual instructions: %v", err)
		return ""
	}

	log.Printf("Created PR #%d: %s", pr.Number, pr.URL)
	if err := store.WriteOutput(runio.KeyPRLink, pr.URL); err != nil {
		log.Printf("Failed to publish PR link: %v", err)
	}
	return pr.URL
}

func renderSummary(p comment.Payload, info *branch.Info, kind action.Kind) string {
	if p.Failed() {
		return fmt.Sprintf("## Postrun\n\n- Result: failed\n- Action: %s\n- Branch: `%s`", kind, info.WorkingBranch)
	}

	s := p.Success
	summary := fmt.Sprintf("## Postrun\n\n- Result: success\n- Action: %s\n- Branch: `%s` (base `%s`)", kind, info.WorkingBranch, info.BaseBranch)
	if s.PRLink != "" {
		summary += fmt.Sprintf("\n- PR: %s", s.PRLink)
	}
	if s.CommitSHA != "" {
		summary += fmt.Sprintf("\n- Commit: `%s`", s.CommitSHA)
	}
	return summary
}
