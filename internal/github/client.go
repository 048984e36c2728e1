package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v66/github"
)

// IssueComment is the slice of a hosting-API comment the engine needs.
type IssueComment struct {
	ID   int64
	Body string
	User string
}

// ReviewComment is a comment on a pull-request review thread.
type ReviewComment struct {
	ID        int64
	Body      string
	User      string
	InReplyTo int64
}

// PullRequestInfo carries the PR fields the branch lifecycle depends on.
type PullRequestInfo struct {
	Number  int
	State   string
	Merged  bool
	Author  string
	BaseRef string
	HeadRef string
	HeadSHA string
}

// CreatedPullRequest is the result of a create-PR call.
type CreatedPullRequest struct {
	Number int
	URL    string
}

// CheckRun is a single check attached to a ref.
type CheckRun struct {
	ID         int64
	Name       string
	Status     string
	Conclusion string
}

// Client is the hosting-API surface consumed by the engine. All calls are
// synchronous request/response; retries happen inside the implementation.
type Client interface {
	CreateIssueComment(ctx context.Context, number int, body string) (int64, error)
	EditIssueComment(ctx context.Context, commentID int64, body string) error
	ListIssueComments(ctx context.Context, number int) ([]IssueComment, error)

	GetReviewComment(ctx context.Context, commentID int64) (*ReviewComment, error)
	ListReviewComments(ctx context.Context, number int) ([]ReviewComment, error)
	ReplyToReviewComment(ctx context.Context, number int, commentID int64, body string) (int64, error)
	EditReviewComment(ctx context.Context, commentID int64, body string) error

	GetPullRequest(ctx context.Context, number int) (*PullRequestInfo, error)
	CreatePullRequest(ctx context.Context, head, base, title, body string) (*CreatedPullRequest, error)

	AddIssueCommentReaction(ctx context.Context, commentID int64, content string) error
	AddReviewCommentReaction(ctx context.Context, commentID int64, content string) error

	ListCheckRunsForRef(ctx context.Context, ref string) ([]CheckRun, error)
	GetJobLogTail(ctx context.Context, jobID int64, maxBytes int64) (string, error)

	Viewer(ctx context.Context) (string, error)
}

// RESTClient implements Client over the go-github typed client.
type RESTClient struct {
	rest  *gogithub.Client
	http  *http.Client
	owner string
	repo  string
	retry RetryPolicy
}

// NewRESTClient creates a hosting-API client bound to one repository.
func NewRESTClient(token string, repo Repository, retry RetryPolicy) *RESTClient {
	return &RESTClient{
		rest:  gogithub.NewClient(nil).WithAuthToken(token),
		http:  &http.Client{Timeout: 30 * time.Second},
		owner: repo.Owner,
		repo:  repo.Name,
		retry: retry,
	}
}

func (c *RESTClient) CreateIssueComment(ctx context.Context, number int, body string) (int64, error) {
	return doWithResult(ctx, c.retry, "create issue comment", func() (int64, error) {
		comment, _, err := c.rest.Issues.CreateComment(ctx, c.owner, c.repo, number, &gogithub.IssueComment{
			Body: gogithub.String(body),
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create comment on #%d: %w", number, err)
		}
		return comment.GetID(), nil
	})
}

func (c *RESTClient) EditIssueComment(ctx context.Context, commentID int64, body string) error {
	return c.retry.Do(ctx, "edit issue comment", func() error {
		_, _, err := c.rest.Issues.EditComment(ctx, c.owner, c.repo, commentID, &gogithub.IssueComment{
			Body: gogithub.String(body),
		})
		if err != nil {
			return fmt.Errorf("failed to edit comment %d: %w", commentID, err)
		}
		return nil
	})
}

// ListIssueComments returns up to the 100 most recent comments on an
// issue or PR, newest first.
func (c *RESTClient) ListIssueComments(ctx context.Context, number int) ([]IssueComment, error) {
	return doWithResult(ctx, c.retry, "list issue comments", func() ([]IssueComment, error) {
		opts := &gogithub.IssueListCommentsOptions{
			Sort:        gogithub.String("created"),
			Direction:   gogithub.String("desc"),
			ListOptions: gogithub.ListOptions{PerPage: 100},
		}
		raw, _, err := c.rest.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments on #%d: %w", number, err)
		}

		comments := make([]IssueComment, 0, len(raw))
		for _, rc := range raw {
			comments = append(comments, IssueComment{
				ID:   rc.GetID(),
				Body: rc.GetBody(),
				User: rc.GetUser().GetLogin(),
			})
		}
		return comments, nil
	})
}

func (c *RESTClient) GetReviewComment(ctx context.Context, commentID int64) (*ReviewComment, error) {
	return doWithResult(ctx, c.retry, "get review comment", func() (*ReviewComment, error) {
		raw, _, err := c.rest.PullRequests.GetComment(ctx, c.owner, c.repo, commentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get review comment %d: %w", commentID, err)
		}
		return convertReviewComment(raw), nil
	})
}

func (c *RESTClient) ListReviewComments(ctx context.Context, number int) ([]ReviewComment, error) {
	return doWithResult(ctx, c.retry, "list review comments", func() ([]ReviewComment, error) {
		opts := &gogithub.PullRequestListCommentsOptions{
			ListOptions: gogithub.ListOptions{PerPage: 100},
		}
		raw, _, err := c.rest.PullRequests.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list review comments on #%d: %w", number, err)
		}

		comments := make([]ReviewComment, 0, len(raw))
		for _, rc := range raw {
			comments = append(comments, *convertReviewComment(rc))
		}
		return comments, nil
	})
}

func (c *RESTClient) ReplyToReviewComment(ctx context.Context, number int, commentID int64, body string) (int64, error) {
	return doWithResult(ctx, c.retry, "reply to review comment", func() (int64, error) {
		reply, _, err := c.rest.PullRequests.CreateCommentInReplyTo(ctx, c.owner, c.repo, number, body, commentID)
		if err != nil {
			return 0, fmt.Errorf("failed to reply to review comment %d: %w", commentID, err)
		}
		return reply.GetID(), nil
	})
}

func (c *RESTClient) EditReviewComment(ctx context.Context, commentID int64, body string) error {
	return c.retry.Do(ctx, "edit review comment", func() error {
		_, _, err := c.rest.PullRequests.EditComment(ctx, c.owner, c.repo, commentID, &gogithub.PullRequestComment{
			Body: gogithub.String(body),
		})
		if err != nil {
			return fmt.Errorf("failed to edit review comment %d: %w", commentID, err)
		}
		return nil
	})
}

func (c *RESTClient) GetPullRequest(ctx context.Context, number int) (*PullRequestInfo, error) {
	return doWithResult(ctx, c.retry, "get pull request", func() (*PullRequestInfo, error) {
		pr, _, err := c.rest.PullRequests.Get(ctx, c.owner, c.repo, number)
		if err != nil {
			return nil, fmt.Errorf("failed to get PR #%d: %w", number, err)
		}
		return &PullRequestInfo{
			Number:  pr.GetNumber(),
			State:   pr.GetState(),
			Merged:  pr.GetMerged(),
			Author:  pr.GetUser().GetLogin(),
			BaseRef: pr.GetBase().GetRef(),
			HeadRef: pr.GetHead().GetRef(),
			HeadSHA: pr.GetHead().GetSHA(),
		}, nil
	})
}

func (c *RESTClient) CreatePullRequest(ctx context.Context, head, base, title, body string) (*CreatedPullRequest, error) {
	return doWithResult(ctx, c.retry, "create pull request", func() (*CreatedPullRequest, error) {
		pr, _, err := c.rest.PullRequests.Create(ctx, c.owner, c.repo, &gogithub.NewPullRequest{
			Title: gogithub.String(title),
			Head:  gogithub.String(head),
			Base:  gogithub.String(base),
			Body:  gogithub.String(body),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create PR %s -> %s: %w", head, base, err)
		}
		return &CreatedPullRequest{
			Number: pr.GetNumber(),
			URL:    pr.GetHTMLURL(),
		}, nil
	})
}

func (c *RESTClient) AddIssueCommentReaction(ctx context.Context, commentID int64, content string) error {
	return c.retry.Do(ctx, "add comment reaction", func() error {
		_, _, err := c.rest.Reactions.CreateIssueCommentReaction(ctx, c.owner, c.repo, commentID, content)
		if err != nil {
			return fmt.Errorf("failed to add %s reaction to comment %d: %w", content, commentID, err)
		}
		return nil
	})
}

func (c *RESTClient) AddReviewCommentReaction(ctx context.Context, commentID int64, content string) error {
	return c.retry.Do(ctx, "add review comment reaction", func() error {
		_, _, err := c.rest.Reactions.CreatePullRequestCommentReaction(ctx, c.owner, c.repo, commentID, content)
		if err != nil {
			return fmt.Errorf("failed to add %s reaction to review comment %d: %w", content, commentID, err)
		}
		return nil
	})
}

func (c *RESTClient) ListCheckRunsForRef(ctx context.Context, ref string) ([]CheckRun, error) {
	return doWithResult(ctx, c.retry, "list check runs", func() ([]CheckRun, error) {
		result, _, err := c.rest.Checks.ListCheckRunsForRef(ctx, c.owner, c.repo, ref, &gogithub.ListCheckRunsOptions{
			ListOptions: gogithub.ListOptions{PerPage: 100},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list check runs for %s: %w", ref, err)
		}

		runs := make([]CheckRun, 0, len(result.CheckRuns))
		for _, cr := range result.CheckRuns {
			runs = append(runs, CheckRun{
				ID:         cr.GetID(),
				Name:       cr.GetName(),
				Status:     cr.GetStatus(),
				Conclusion: cr.GetConclusion(),
			})
		}
		return runs, nil
	})
}

// GetJobLogTail downloads a job's log and returns at most the last
// maxBytes of it.
func (c *RESTClient) GetJobLogTail(ctx context.Context, jobID int64, maxBytes int64) (string, error) {
	return doWithResult(ctx, c.retry, "get job logs", func() (string, error) {
		logURL, _, err := c.rest.Actions.GetWorkflowJobLogs(ctx, c.owner, c.repo, jobID, 3)
		if err != nil {
			return "", fmt.Errorf("failed to resolve log URL for job %d: %w", jobID, err)
		}

		resp, err := c.http.Get(logURL.String())
		if err != nil {
			return "", fmt.Errorf("failed to download job log: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("job log download returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read job log: %w", err)
		}

		if int64(len(data)) > maxBytes {
			data = data[int64(len(data))-maxBytes:]
		}
		return string(data), nil
	})
}

// Viewer returns the login of the authenticated identity (the token's
// own user), used by the branch-reuse decision for bot-owned PRs.
func (c *RESTClient) Viewer(ctx context.Context) (string, error) {
	return doWithResult(ctx, c.retry, "get viewer", func() (string, error) {
		user, _, err := c.rest.Users.Get(ctx, "")
		if err != nil {
			return "", fmt.Errorf("failed to get authenticated user: %w", err)
		}
		return user.GetLogin(), nil
	})
}

func convertReviewComment(rc *gogithub.PullRequestComment) *ReviewComment {
	return &ReviewComment{
		ID:        rc.GetID(),
		Body:      rc.GetBody(),
		User:      rc.GetUser().GetLogin(),
		InReplyTo: rc.GetInReplyTo(),
	}
}
