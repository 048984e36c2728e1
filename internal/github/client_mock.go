package github

import "context"

// MockClient is a hand-rolled Client implementation for tests. Each
// method delegates to the corresponding Func field when set and records
// the call so tests can assert on invocations.
type MockClient struct {
	CreateIssueCommentFunc       func(ctx context.Context, number int, body string) (int64, error)
	EditIssueCommentFunc         func(ctx context.Context, commentID int64, body string) error
	ListIssueCommentsFunc        func(ctx context.Context, number int) ([]IssueComment, error)
	GetReviewCommentFunc         func(ctx context.Context, commentID int64) (*ReviewComment, error)
	ListReviewCommentsFunc       func(ctx context.Context, number int) ([]ReviewComment, error)
	ReplyToReviewCommentFunc     func(ctx context.Context, number int, commentID int64, body string) (int64, error)
	EditReviewCommentFunc        func(ctx context.Context, commentID int64, body string) error
	GetPullRequestFunc           func(ctx context.Context, number int) (*PullRequestInfo, error)
	CreatePullRequestFunc        func(ctx context.Context, head, base, title, body string) (*CreatedPullRequest, error)
	AddIssueCommentReactionFunc  func(ctx context.Context, commentID int64, content string) error
	AddReviewCommentReactionFunc func(ctx context.Context, commentID int64, content string) error
	ListCheckRunsForRefFunc      func(ctx context.Context, ref string) ([]CheckRun, error)
	GetJobLogTailFunc            func(ctx context.Context, jobID int64, maxBytes int64) (string, error)
	ViewerFunc                   func(ctx context.Context) (string, error)

	// Recorded calls
	CreateIssueCommentCalls []struct {
		Number int
		Body   string
	}
	EditIssueCommentCalls []struct {
		CommentID int64
		Body      string
	}
	ReplyToReviewCommentCalls []struct {
		Number    int
		CommentID int64
		Body      string
	}
	EditReviewCommentCalls []struct {
		CommentID int64
		Body      string
	}
	CreatePullRequestCalls []struct {
		Head, Base, Title, Body string
	}
	ReactionCalls []struct {
		CommentID int64
		Content   string
		Review    bool
	}
}

// NewMockClient creates a mock with permissive defaults.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) CreateIssueComment(ctx context.Context, number int, body string) (int64, error) {
	m.CreateIssueCommentCalls = append(m.CreateIssueCommentCalls, struct {
		Number int
		Body   string
	}{number, body})
	if m.CreateIssueCommentFunc != nil {
		return m.CreateIssueCommentFunc(ctx, number, body)
	}
	return 12345, nil
}

func (m *MockClient) EditIssueComment(ctx context.Context, commentID int64, body string) error {
	m.EditIssueCommentCalls = append(m.EditIssueCommentCalls, struct {
		CommentID int64
		Body      string
	}{commentID, body})
	if m.EditIssueCommentFunc != nil {
		return m.EditIssueCommentFunc(ctx, commentID, body)
	}
	return nil
}

func (m *MockClient) ListIssueComments(ctx context.Context, number int) ([]IssueComment, error) {
	if m.ListIssueCommentsFunc != nil {
		return m.ListIssueCommentsFunc(ctx, number)
	}
	return nil, nil
}

func (m *MockClient) GetReviewComment(ctx context.Context, commentID int64) (*ReviewComment, error) {
	if m.GetReviewCommentFunc != nil {
		return m.GetReviewCommentFunc(ctx, commentID)
	}
	return &ReviewComment{ID: commentID}, nil
}

func (m *MockClient) ListReviewComments(ctx context.Context, number int) ([]ReviewComment, error) {
	if m.ListReviewCommentsFunc != nil {
		return m.ListReviewCommentsFunc(ctx, number)
	}
	return nil, nil
}

func (m *MockClient) ReplyToReviewComment(ctx context.Context, number int, commentID int64, body string) (int64, error) {
	m.ReplyToReviewCommentCalls = append(m.ReplyToReviewCommentCalls, struct {
		Number    int
		CommentID int64
		Body      string
	}{number, commentID, body})
	if m.ReplyToReviewCommentFunc != nil {
		return m.ReplyToReviewCommentFunc(ctx, number, commentID, body)
	}
	return 67890, nil
}

func (m *MockClient) EditReviewComment(ctx context.Context, commentID int64, body string) error {
	m.EditReviewCommentCalls = append(m.EditReviewCommentCalls, struct {
		CommentID int64
		Body      string
	}{commentID, body})
	if m.EditReviewCommentFunc != nil {
		return m.EditReviewCommentFunc(ctx, commentID, body)
	}
	return nil
}

func (m *MockClient) GetPullRequest(ctx context.Context, number int) (*PullRequestInfo, error) {
	if m.GetPullRequestFunc != nil {
		return m.GetPullRequestFunc(ctx, number)
	}
	return &PullRequestInfo{Number: number, State: "open"}, nil
}

func (m *MockClient) CreatePullRequest(ctx context.Context, head, base, title, body string) (*CreatedPullRequest, error) {
	m.CreatePullRequestCalls = append(m.CreatePullRequestCalls, struct {
		Head, Base, Title, Body string
	}{head, base, title, body})
	if m.CreatePullRequestFunc != nil {
		return m.CreatePullRequestFunc(ctx, head, base, title, body)
	}
	return &CreatedPullRequest{Number: 1, URL: "https://github.com/owner/repo/pull/1"}, nil
}

func (m *MockClient) AddIssueCommentReaction(ctx context.Context, commentID int64, content string) error {
	m.ReactionCalls = append(m.ReactionCalls, struct {
		CommentID int64
		Content   string
		Review    bool
	}{commentID, content, false})
	if m.AddIssueCommentReactionFunc != nil {
		return m.AddIssueCommentReactionFunc(ctx, commentID, content)
	}
	return nil
}

func (m *MockClient) AddReviewCommentReaction(ctx context.Context, commentID int64, content string) error {
	m.ReactionCalls = append(m.ReactionCalls, struct {
		CommentID int64
		Content   string
		Review    bool
	}{commentID, content, true})
	if m.AddReviewCommentReactionFunc != nil {
		return m.AddReviewCommentReactionFunc(ctx, commentID, content)
	}
	return nil
}

func (m *MockClient) ListCheckRunsForRef(ctx context.Context, ref string) ([]CheckRun, error) {
	if m.ListCheckRunsForRefFunc != nil {
		return m.ListCheckRunsForRefFunc(ctx, ref)
	}
	return nil, nil
}

func (m *MockClient) GetJobLogTail(ctx context.Context, jobID int64, maxBytes int64) (string, error) {
	if m.GetJobLogTailFunc != nil {
		return m.GetJobLogTailFunc(ctx, jobID, maxBytes)
	}
	return "", nil
}

func (m *MockClient) Viewer(ctx context.Context) (string, error) {
	if m.ViewerFunc != nil {
		return m.ViewerFunc(ctx)
	}
	return "postrun[bot]", nil
}
