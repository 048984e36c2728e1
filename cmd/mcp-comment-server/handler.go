package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/cexll/postrun/internal/github"
	"github.com/cexll/postrun/internal/github/comment"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// UpdateCommentParams defines the input parameters for the tool
type UpdateCommentParams struct {
	Body string `json:"body" jsonschema:"The updated comment content"`
}

// HandleUpdateComment handles the update_task_comment tool call. The comment
// to edit is identified by POSTRUN_COMMENT_ID; on review-comment triggers
// (GITHUB_EVENT_NAME=pull_request_review_comment) it targets the review
// thread API instead of the issue comment API.
func HandleUpdateComment(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params UpdateCommentParams,
) (*mcp.CallToolResult, any, error) {
	log.Printf("[MCP Comment Server] Received update_task_comment request")

	owner := os.Getenv("REPO_OWNER")
	repo := os.Getenv("REPO_NAME")
	commentIDStr := os.Getenv("POSTRUN_COMMENT_ID")
	token := os.Getenv("GITHUB_TOKEN")
	eventName := os.Getenv("GITHUB_EVENT_NAME")
	workflow := os.Getenv("GITHUB_WORKFLOW")

	if params.Body == "" {
		return nil, nil, fmt.Errorf("body parameter is required")
	}

	commentID, err := strconv.ParseInt(commentIDStr, 10, 64)
	if err != nil {
		log.Printf("[MCP Comment Server] Invalid POSTRUN_COMMENT_ID: %v", err)
		return nil, nil, fmt.Errorf("invalid POSTRUN_COMMENT_ID: %w", err)
	}

	body := comment.SanitizeContent(params.Body)
	if workflow != "" {
		body = comment.EmbedMarker(body, workflow)
	}
	log.Printf("[MCP Comment Server] Updating comment with %d characters", len(body))

	client := github.NewRESTClient(token, github.Repository{Owner: owner, Name: repo}, github.DefaultRetryPolicy())
	if eventName == "pull_request_review_comment" {
		err = client.EditReviewComment(ctx, commentID, body)
	} else {
		err = client.EditIssueComment(ctx, commentID, body)
	}
	if err != nil {
		log.Printf("[MCP Comment Server] Failed to update comment: %v", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: fmt.Sprintf("Error: %v", err),
				},
			},
			IsError: true,
		}, nil, nil
	}

	resultText := fmt.Sprintf(`{
  "success": true,
  "owner": "%s",
  "repo": "%s",
  "comment_id": %d,
  "event_name": "%s",
  "body_length": %d
}`, owner, repo, commentID, eventName, len(body))

	log.Printf("[MCP Comment Server] Successfully updated comment #%d", commentID)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: resultText},
		},
	}, nil, nil
}
