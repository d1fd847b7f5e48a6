package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/webrag/webrag/pkg/retry"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
}

func TestEmbed(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/embedding-001:embedContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("missing API key header")
		}

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Content.Parts[0].Text != "hello" {
			t.Errorf("embedded text = %q, want %q", req.Content.Parts[0].Text, "hello")
		}

		fmt.Fprint(w, `{"embedding":{"values":[0.1,0.2,0.3]}}`)
	})

	vec, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("Embed() = %v, want [0.1 0.2 0.3]", vec)
	}
}

func TestEmbed_EmptyResponse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":{"values":[]}}`)
	})

	if _, err := client.Embed(context.Background(), "hello"); err == nil {
		t.Error("Embed() error = nil, want error for empty vector")
	}
}

func TestComplete(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.SystemInstruction == nil {
			t.Error("missing system instruction")
		}
		if req.Contents[0].Parts[0].Text != "what are the values?" {
			t.Errorf("user text = %q", req.Contents[0].Parts[0].Text)
		}

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"The values are "},{"text":"collaboration."}]}}]}`)
	})

	answer, err := client.Complete(context.Background(), "system prompt", "what are the values?")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "The values are collaboration." {
		t.Errorf("Complete() = %q", answer)
	}
}

func TestPost_APIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"status":"RESOURCE_EXHAUSTED","message":"quota exceeded"}}`)
	})

	_, err := client.Embed(context.Background(), "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
	if apiErr.Status != "RESOURCE_EXHAUSTED" {
		t.Errorf("Status = %q", apiErr.Status)
	}
}

type fakeNetError struct{ timeout bool }

func (e *fakeNetError) Error() string   { return "net failure" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Class
	}{
		{"rate limited", &APIError{StatusCode: 429}, retry.Quota},
		{"internal server error", &APIError{StatusCode: 500}, retry.Transient},
		{"bad gateway", &APIError{StatusCode: 502}, retry.Transient},
		{"unauthorized", &APIError{StatusCode: 401}, retry.Fatal},
		{"forbidden", &APIError{StatusCode: 403}, retry.Fatal},
		{"bad request", &APIError{StatusCode: 400}, retry.Fatal},
		{"wrapped api error", fmt.Errorf("request failed: %w", &APIError{StatusCode: 503}), retry.Transient},
		{"timeout", &fakeNetError{timeout: true}, retry.Transient},
		{"connection refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, retry.Transient},
		{"plain error", errors.New("something else"), retry.Fatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
