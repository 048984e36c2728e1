package branch

import (
	"context"
	"fmt"
	"log"

	"github.com/cexll/postrun/internal/git"
	"github.com/cexll/postrun/internal/github"
)

// prFetchDepth is the history depth fetched for PR refs. Conflict
// resolution needs full ancestry and fetches unbounded instead.
const prFetchDepth = 20

// Info is the result of branch-lifecycle resolution, created exactly
// once per run.
type Info struct {
	BaseBranch    string
	WorkingBranch string
	IsNewBranch   bool

	// PRBaseOverride is set only when a new branch is carved out of an
	// existing PR branch for an external contributor. It preserves the
	// PR's original base as the target of a future pull request.
	PRBaseOverride string
}

// Options control the reuse decision and fetch behavior.
type Options struct {
	SilentMode         bool
	AlwaysNewBranch    bool
	ResolveConflicts   bool
	BaseBranchOverride string

	// TokenIdentity is the login the credentials act as; a PR authored
	// by this identity is the bot's own and is reused.
	TokenIdentity string
}

// Manager decides whether to reuse an existing pull-request branch or
// create a fresh one, and performs the underlying git operations.
// Any git failure here is fatal to the run; retries apply only to
// hosting-API calls.
type Manager struct {
	client github.Client
	ops    *git.Ops
	opts   Options
}

// NewManager creates a branch lifecycle manager.
func NewManager(client github.Client, ops *git.Ops, opts Options) *Manager {
	return &Manager{client: client, ops: ops, opts: opts}
}

// Resolve establishes the working branch for the run and reports it.
func (m *Manager) Resolve(ctx context.Context, trigger *github.TriggerContext) (*Info, error) {
	if trigger.IsPullRequestContext() && trigger.HasEntity() {
		return m.resolvePullRequest(ctx, trigger)
	}
	return m.resolveDefault(ctx, trigger)
}

func (m *Manager) resolveDefault(ctx context.Context, trigger *github.TriggerContext) (*Info, error) {
	baseBranch := m.opts.BaseBranchOverride
	if baseBranch == "" {
		baseBranch = trigger.Repository.DefaultBranch
	}
	if trigger.Event == github.EventPush && trigger.PushedRef != "" {
		baseBranch = trigger.PushedRef
	}
	if baseBranch == "" {
		return nil, fmt.Errorf("cannot determine base branch: no override and no repository default")
	}

	if err := m.ops.Fetch(m.fetchDepth(), baseBranch); err != nil {
		return nil, err
	}

	return m.checkoutFrom(trigger, baseBranch, "")
}

func (m *Manager) resolvePullRequest(ctx context.Context, trigger *github.TriggerContext) (*Info, error) {
	pr, err := m.client.GetPullRequest(ctx, trigger.EntityNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PR #%d for branch resolution: %w", trigger.EntityNumber, err)
	}

	// Local history for both refs must exist before any checkout.
	if err := m.ops.Fetch(m.fetchDepth(), pr.BaseRef, pr.HeadRef); err != nil {
		return nil, err
	}

	if m.ShouldUseExistingBranch(trigger, pr) {
		log.Printf("[Branch] Reusing PR branch %s (base %s)", pr.HeadRef, pr.BaseRef)
		if err := m.ops.CheckoutNewBranch(pr.HeadRef, "origin/"+pr.HeadRef); err != nil {
			return nil, err
		}
		return &Info{
			BaseBranch:    pr.BaseRef,
			WorkingBranch: pr.HeadRef,
			IsNewBranch:   false,
		}, nil
	}

	// Not reusing: the PR head becomes the base for a fresh branch and
	// the PR's own base is retained for the eventual pull request.
	log.Printf("[Branch] Carving new branch from PR head %s", pr.HeadRef)
	return m.checkoutFrom(trigger, pr.HeadRef, pr.BaseRef)
}

func (m *Manager) checkoutFrom(trigger *github.TriggerContext, baseBranch, prBaseOverride string) (*Info, error) {
	if m.opts.SilentMode {
		if err := m.ops.Checkout(baseBranch); err != nil {
			return nil, err
		}
		return &Info{
			BaseBranch:     baseBranch,
			WorkingBranch:  baseBranch,
			IsNewBranch:    false,
			PRBaseOverride: prBaseOverride,
		}, nil
	}

	kind := trigger.EntityKind()
	if !trigger.HasEntity() {
		kind = string(trigger.Event)
	}
	name := DerivedName(kind, trigger.EntityNumber, trigger.RunID)

	if err := m.ops.CheckoutNewBranch(name, "origin/"+baseBranch); err != nil {
		return nil, err
	}

	log.Printf("[Branch] Created working branch %s from %s", name, baseBranch)
	return &Info{
		BaseBranch:     baseBranch,
		WorkingBranch:  name,
		IsNewBranch:    true,
		PRBaseOverride: prBaseOverride,
	}, nil
}

// ShouldUseExistingBranch applies the ordered reuse rules, short-
// circuiting on the first match. The decision is pure: identical inputs
// always yield the same answer.
func (m *Manager) ShouldUseExistingBranch(trigger *github.TriggerContext, pr *github.PullRequestInfo) bool {
	if pr.State == "closed" || pr.Merged {
		return false
	}
	if m.opts.AlwaysNewBranch {
		return false
	}
	if m.opts.SilentMode {
		return true
	}
	if trigger.Actor != "" && trigger.Actor == pr.Author {
		return true
	}
	if m.opts.TokenIdentity != "" && pr.Author == m.opts.TokenIdentity {
		return true
	}
	// External contributor default: isolate changes in a new branch.
	return false
}

func (m *Manager) fetchDepth() int {
	if m.opts.ResolveConflicts {
		return 0
	}
	return prFetchDepth
}
