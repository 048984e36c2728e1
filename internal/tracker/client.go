// Package tracker talks to the external issue tracker for runs that were
// dispatched from it rather than from the hosting platform.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts comments and status transitions to the external tracker.
type Client interface {
	AddComment(ctx context.Context, issueKey, text string) error
	MoveIssueToReview(ctx context.Context, issueKey string) error
}

// RESTClient implements Client over the tracker's REST API with basic
// auth. No tracker SDK is in use; the API surface is two endpoints.
type RESTClient struct {
	baseURL      string
	user         string
	token        string
	reviewStatus string
	http         *http.Client
}

// NewRESTClient creates a tracker client. reviewStatus is the name of
// the transition that marks an issue as in review.
func NewRESTClient(baseURL, user, token, reviewStatus string) *RESTClient {
	return &RESTClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		user:         user,
		token:        token,
		reviewStatus: reviewStatus,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

// AddComment posts a plain-text comment to a tracker issue.
func (c *RESTClient) AddComment(ctx context.Context, issueKey, text string) error {
	body := map[string]string{"body": text}
	_, err := c.post(ctx, fmt.Sprintf("/rest/api/2/issue/%s/comment", issueKey), body)
	if err != nil {
		return fmt.Errorf("failed to comment on %s: %w", issueKey, err)
	}
	return nil
}

// MoveIssueToReview transitions a tracker issue to the configured
// in-review status. The transition ID is looked up by name because IDs
// differ per project workflow.
func (c *RESTClient) MoveIssueToReview(ctx context.Context, issueKey string) error {
	data, err := c.get(ctx, fmt.Sprintf("/rest/api/2/issue/%s/transitions", issueKey))
	if err != nil {
		return fmt.Errorf("failed to list transitions for %s: %w", issueKey, err)
	}

	var result struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"transitions"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to parse transitions: %w", err)
	}

	var transitionID string
	for _, t := range result.Transitions {
		if strings.EqualFold(t.Name, c.reviewStatus) {
			transitionID = t.ID
			break
		}
	}
	if transitionID == "" {
		return fmt.Errorf("no %q transition available for %s", c.reviewStatus, issueKey)
	}

	payload := map[string]interface{}{
		"transition": map[string]string{"id": transitionID},
	}
	if _, err := c.post(ctx, fmt.Sprintf("/rest/api/2/issue/%s/transitions", issueKey), payload); err != nil {
		return fmt.Errorf("failed to transition %s: %w", issueKey, err)
	}
	return nil
}

func (c *RESTClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *RESTClient) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *RESTClient) do(req *http.Request) ([]byte, error) {
	req.SetBasicAuth(c.user, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tracker API error: %d - %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// MockClient is a test implementation of Client.
type MockClient struct {
	AddCommentFunc        func(ctx context.Context, issueKey, text string) error
	MoveIssueToReviewFunc func(ctx context.Context, issueKey string) error

	AddCommentCalls []struct {
		IssueKey string
		Text     string
	}
	MoveToReviewCalls []string
}

func (m *MockClient) AddComment(ctx context.Context, issueKey, text string) error {
	m.AddCommentCalls = append(m.AddCommentCalls, struct {
		IssueKey string
		Text     string
	}{issueKey, text})
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, issueKey, text)
	}
	return nil
}

func (m *MockClient) MoveIssueToReview(ctx context.Context, issueKey string) error {
	m.MoveToReviewCalls = append(m.MoveToReviewCalls, issueKey)
	if m.MoveIssueToReviewFunc != nil {
		return m.MoveIssueToReviewFunc(ctx, issueKey)
	}
	return nil
}
