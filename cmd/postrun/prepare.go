package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/cexll/postrun/internal/branch"
	"github.com/cexll/postrun/internal/config"
	"github.com/cexll/postrun/internal/git"
	"github.com/cexll/postrun/internal/github"
	"github.com/cexll/postrun/internal/github/comment"
	"github.com/cexll/postrun/internal/runio"
)

// runPrepare runs before task execution: it acknowledges the trigger,
// brings the tracked comment into the WORKING state, configures the git
// identity, resolves the working branch and publishes the branch info
// for the task and the complete phase.
func runPrepare(ctx context.Context, cfg *config.Config, trigger *github.TriggerContext, client github.Client, store *runio.Store, token string) error {
	runner := &git.RealRunner{}
	ops := git.NewOps(runner, workdir())

	var commentID int64
	if !cfg.SilentMode {
		reconciler := comment.NewReconciler(client, trigger.Workflow, cfg.SingleComment)
		id, err := reconciler.EnsureWorking(ctx, trigger)
		if err != nil {
			return err
		}
		commentID = id

		comment.AcknowledgeTrigger(ctx, client, trigger)
	}

	if err := ops.ConfigureBotUser(cfg.BotName); err != nil {
		return err
	}
	if err := ops.SetPushURL(trigger.Repository.Owner, trigger.Repository.Name, token); err != nil {
		return err
	}

	// The token's own identity feeds the branch-reuse decision. A failed
	// lookup only disables the self-PR rule.
	identity, err := client.Viewer(ctx)
	if err != nil {
		log.Printf("Could not resolve token identity: %v", err)
		identity = ""
	}

	mgr := branch.NewManager(client, ops, branch.Options{
		SilentMode:         cfg.SilentMode,
		AlwaysNewBranch:    cfg.AlwaysNewBranch,
		ResolveConflicts:   cfg.ResolveConflicts,
		BaseBranchOverride: cfg.BaseBranch,
		TokenIdentity:      identity,
	})
	info, err := mgr.Resolve(ctx, trigger)
	if err != nil {
		return err
	}

	log.Printf("Resolved branch: working=%s base=%s new=%v", info.WorkingBranch, info.BaseBranch, info.IsNewBranch)

	outputs := []struct {
		key   string
		value string
	}{
		{runio.KeyEntityNumber, strconv.Itoa(trigger.EntityNumber)},
		{runio.KeyBaseBranch, info.BaseBranch},
		{runio.KeyWorkingBranch, info.WorkingBranch},
		{runio.KeyIsNewBranch, strconv.FormatBool(info.IsNewBranch)},
		{runio.KeyPRBaseBranch, info.PRBaseOverride},
		{runio.KeyCommentID, strconv.FormatInt(commentID, 10)},
	}
	for _, out := range outputs {
		if err := store.WriteOutput(out.key, out.value); err != nil {
			return fmt.Errorf("failed to publish %s: %w", out.key, err)
		}
	}

	return nil
}
