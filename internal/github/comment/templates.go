package comment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cexll/postrun/internal/action"
	"github.com/cexll/postrun/internal/github"
)

const spinnerImg = `<img src="https://github.githubassets.com/images/spinners/octocat-spinner-32.gif" width="20" height="20" alt="loading" />`

// WorkingBody renders the initial tracked-comment body shown while the
// task runs.
func WorkingBody(actor string) string {
	if actor == "" {
		actor = "user"
	}
	return fmt.Sprintf("**Postrun is working on @%s's task** %s\n\n### Tasks\n- [ ] Analyzing request\n- [ ] Making changes\n- [ ] Reporting results", actor, spinnerImg)
}

// RenderTerminal renders the terminal body for a payload. The workflow
// marker is embedded afterwards by the reconciler.
func RenderTerminal(p Payload, trigger *github.TriggerContext) string {
	if p.Failed() {
		return failureBody(p.Failure, trigger)
	}
	return successBody(p.Success, trigger)
}

func failureBody(f *FailureFeedback, trigger *github.TriggerContext) string {
	message := SanitizeContent(f.ErrorMessage)
	if message == "" {
		message = "The task failed. Check the run logs for details."
	}

	var b strings.Builder
	b.WriteString("**Postrun encountered an error**\n\n")
	b.WriteString("```\n")
	b.WriteString(message)
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "[View run](%s)", trigger.RunURL())
	return b.String()
}

func successBody(s *SuccessFeedback, trigger *github.TriggerContext) string {
	switch s.Kind {
	case action.CommitChanges:
		return commitPushedBody(s, trigger)
	case action.Push:
		return pushBody(s, trigger)
	case action.CreatePR:
		if s.PRLink != "" {
			return prCreatedBody(s, trigger)
		}
		return manualPRBody(s, trigger)
	default:
		return summaryBody(s, trigger)
	}
}

func commitPushedBody(s *SuccessFeedback, trigger *github.TriggerContext) string {
	var b strings.Builder
	b.WriteString("**Postrun finished the task and pushed a commit**\n\n")
	if s.Title != "" {
		fmt.Fprintf(&b, "**%s**\n\n", SanitizeContent(s.Title))
	}
	if s.Summary != "" {
		b.WriteString(SanitizeContent(s.Summary))
		b.WriteString("\n\n")
	}
	if s.CommitSHA != "" {
		fmt.Fprintf(&b, "Commit: `%s`\n\n", s.CommitSHA)
	}
	fmt.Fprintf(&b, "[View run](%s)", trigger.RunURL())
	return b.String()
}

func pushBody(s *SuccessFeedback, trigger *github.TriggerContext) string {
	var b strings.Builder
	b.WriteString("**Postrun pushed pending commits**\n\n")
	if s.WorkingBranch != "" {
		fmt.Fprintf(&b, "Branch: `%s`\n\n", s.WorkingBranch)
	}
	fmt.Fprintf(&b, "[View run](%s)", trigger.RunURL())
	return b.String()
}

func prCreatedBody(s *SuccessFeedback, trigger *github.TriggerContext) string {
	var b strings.Builder
	b.WriteString("**Postrun finished the task and opened a pull request**\n\n")
	if s.Summary != "" {
		b.WriteString(SanitizeContent(s.Summary))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "[View PR ➔](%s)\n\n", s.PRLink)
	fmt.Fprintf(&b, "[View run](%s)", trigger.RunURL())
	return b.String()
}

// manualPRBody is used when the changes are on the working branch but PR
// creation is deferred to a downstream step.
func manualPRBody(s *SuccessFeedback, trigger *github.TriggerContext) string {
	var b strings.Builder
	b.WriteString("**Postrun pushed changes to a new branch**\n\n")
	if s.Summary != "" {
		b.WriteString(SanitizeContent(s.Summary))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Branch: `%s`\n\n", s.WorkingBranch)
	fmt.Fprintf(&b, "[Create a PR ➔](%s)\n\n", CompareURL(trigger, s.BaseBranch, s.WorkingBranch, s.Title))
	fmt.Fprintf(&b, "[View run](%s)", trigger.RunURL())
	return b.String()
}

func summaryBody(s *SuccessFeedback, trigger *github.TriggerContext) string {
	var b strings.Builder
	b.WriteString("**Postrun finished the task**\n\n")
	if s.Title != "" {
		fmt.Fprintf(&b, "**%s**\n\n", SanitizeContent(s.Title))
	}
	if s.Summary != "" {
		b.WriteString(SanitizeContent(s.Summary))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "[View run](%s)", trigger.RunURL())
	return b.String()
}

// CompareURL builds a quick-pull compare link between the base and
// working branches.
func CompareURL(trigger *github.TriggerContext, base, head, title string) string {
	if title == "" {
		title = fmt.Sprintf("Changes for %s #%d", strings.ToUpper(trigger.EntityKind()), trigger.EntityNumber)
	}
	return fmt.Sprintf("%s/%s/compare/%s...%s?quick_pull=1&title=%s",
		trigger.ServerURL,
		trigger.Repository.FullName(),
		base,
		head,
		url.QueryEscape(title),
	)
}

// PlainText renders the non-marker body posted to the external tracker.
func PlainText(p Payload, trigger *github.TriggerContext) string {
	if p.Failed() {
		message := SanitizeContent(p.Failure.ErrorMessage)
		if message == "" {
			message = "The task failed. Check the run logs for details."
		}
		return fmt.Sprintf("Task failed: %s\nRun: %s", message, trigger.RunURL())
	}

	s := p.Success
	var b strings.Builder
	b.WriteString("Task finished")
	if s.Title != "" {
		fmt.Fprintf(&b, ": %s", SanitizeContent(s.Title))
	}
	b.WriteString("\n")
	if s.Summary != "" {
		b.WriteString(SanitizeContent(s.Summary))
		b.WriteString("\n")
	}
	if s.PRLink != "" {
		fmt.Fprintf(&b, "PR: %s\n", s.PRLink)
	}
	fmt.Fprintf(&b, "Run: %s", trigger.RunURL())
	return b.String()
}
