package git

import (
	"fmt"
	"strconv"
	"strings"
)

// Ops issues single git subcommands against one working directory. Exit
// codes are treated as boolean success signals; there is no retry for
// git-local operations.
type Ops struct {
	runner  Runner
	workdir string
}

// NewOps creates git operations bound to a working directory.
func NewOps(runner Runner, workdir string) *Ops {
	return &Ops{runner: runner, workdir: workdir}
}

func (o *Ops) git(args ...string) ([]byte, error) {
	return o.runner.RunInDir(o.workdir, "git", args...)
}

// Fetch fetches refs from origin. depth <= 0 means unbounded history,
// used when conflict-resolution work needs full ancestry.
func (o *Ops) Fetch(depth int, refs ...string) error {
	args := []string{"fetch", "origin"}
	if depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(depth))
	}
	args = append(args, refs...)

	output, err := o.git(args...)
	if err != nil {
		return fmt.Errorf("git fetch failed (missing ref, auth failure, or network error): %w\nOutput: %s", err, output)
	}
	return nil
}

// CheckoutNewBranch creates (or resets) a branch at the given start point
// and checks it out.
func (o *Ops) CheckoutNewBranch(name, startPoint string) error {
	output, err := o.git("checkout", "-B", name, startPoint)
	if err != nil {
		return fmt.Errorf("git checkout -B %s %s failed (ref not fetched or invalid branch name): %w\nOutput: %s", name, startPoint, err, output)
	}
	return nil
}

// Checkout checks out an existing branch.
func (o *Ops) Checkout(name string) error {
	output, err := o.git("checkout", name)
	if err != nil {
		return fmt.Errorf("git checkout %s failed (branch absent or working tree conflict): %w\nOutput: %s", name, err, output)
	}
	return nil
}

// ResetHardTo force-resets the current branch to a remote ref.
func (o *Ops) ResetHardTo(ref string) error {
	output, err := o.git("reset", "--hard", ref)
	if err != nil {
		return fmt.Errorf("git reset --hard %s failed: %w\nOutput: %s", ref, err, output)
	}
	return nil
}

// ConfigureUser sets the commit identity for the run.
func (o *Ops) ConfigureUser(name, email string) error {
	if _, err := o.git("config", "user.name", name); err != nil {
		return fmt.Errorf("failed to set git user.name: %w", err)
	}
	if _, err := o.git("config", "user.email", email); err != nil {
		return fmt.Errorf("failed to set git user.email: %w", err)
	}
	return nil
}

// ConfigureBotUser derives the noreply identity for a bot account.
func (o *Ops) ConfigureBotUser(botName string) error {
	name := botName + "[bot]"
	email := fmt.Sprintf("%s[bot]@users.noreply.github.com", botName)
	return o.ConfigureUser(name, email)
}

// SetPushURL points origin at a tokened HTTPS remote so pushes
// authenticate without a credential helper.
func (o *Ops) SetPushURL(owner, repo, token string) error {
	url := fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", token, owner, repo)
	output, err := o.git("remote", "set-url", "--push", "origin", url)
	if err != nil {
		// Never echo the remote URL, it embeds the token.
		return fmt.Errorf("git remote set-url failed: %w\nOutput: %s", err, strings.ReplaceAll(string(output), token, "***"))
	}
	return nil
}

// Push pushes the given branch to origin.
func (o *Ops) Push(branch string) error {
	output, err := o.git("push", "origin", branch)
	if err != nil {
		return fmt.Errorf("git push origin %s failed (permission, auth, or network error): %w\nOutput: %s", branch, err, output)
	}
	return nil
}
