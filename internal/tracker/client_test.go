package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddComment(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		user, token, ok := r.BasicAuth()
		if !ok || user != "bot@example.com" || token != "secret" {
			t.Errorf("basic auth = (%q, %q, %v), want configured credentials", user, token, ok)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotBody = body["body"]
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "bot@example.com", "secret", "In Review")
	if err := client.AddComment(context.Background(), "PROJ-1", "Task finished"); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	if gotPath != "/rest/api/2/issue/PROJ-1/comment" {
		t.Errorf("path = %q, want comment endpoint", gotPath)
	}
	if gotBody != "Task finished" {
		t.Errorf("body = %q, want %q", gotBody, "Task finished")
	}
}

func TestAddCommentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "issue does not exist", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "u", "t", "In Review")
	if err := client.AddComment(context.Background(), "PROJ-404", "text"); err == nil {
		t.Error("AddComment() error = nil, want API error surfaced")
	}
}

func TestMoveIssueToReview(t *testing.T) {
	var transitioned string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"transitions": []map[string]string{
					{"id": "11", "name": "To Do"},
					{"id": "21", "name": "in review"},
					{"id": "31", "name": "Done"},
				},
			})
		case "POST":
			var body struct {
				Transition struct {
					ID string `json:"id"`
				} `json:"transition"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			transitioned = body.Transition.ID
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "u", "t", "In Review")
	if err := client.MoveIssueToReview(context.Background(), "PROJ-1"); err != nil {
		t.Fatalf("MoveIssueToReview() error = %v", err)
	}

	// Transition names match case-insensitively.
	if transitioned != "21" {
		t.Errorf("transition id = %q, want %q", transitioned, "21")
	}
}

func TestMoveIssueToReviewNoMatchingTransition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transitions": []map[string]string{{"id": "11", "name": "Done"}},
		})
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "u", "t", "In Review")
	if err := client.MoveIssueToReview(context.Background(), "PROJ-1"); err == nil {
		t.Error("MoveIssueToReview() error = nil, want failure when no transition matches")
	}
}

func TestNewRESTClientTrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/K-1/comment" {
			t.Errorf("path = %q, double slash not collapsed", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewRESTClient(server.URL+"/", "u", "t", "In Review")
	if err := client.AddComment(context.Background(), "K-1", "x"); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
}
