package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arkankau/coffee-chatted/llm"
)

func TestChatSendsJSONModeAndParameters(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization = %q", auth)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{\"ok\":true}"}}],"usage":{"prompt_tokens":7,"completion_tokens":3,"total_tokens":10}}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1/", "sk-test", time.Second)
	res, err := c.Chat(context.Background(), llm.Request{
		Model:      "gpt-4o-mini",
		ForceJSON:  true,
		Messages:   []llm.Message{{Role: "user", Content: "hi"}},
		Parameters: map[string]any{"temperature": 0, "max_tokens": 200},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.Text != `{"ok":true}` {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Usage.TotalTokens != 10 {
		t.Fatalf("usage = %+v", res.Usage)
	}
	if temp, ok := got["temperature"]; !ok || temp != float64(0) {
		t.Fatalf("temperature should be sent explicitly, body = %v", got)
	}
	if got["max_tokens"] != float64(200) {
		t.Fatalf("max_tokens = %v", got["max_tokens"])
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("response_format = %v", got["response_format"])
	}
}

func TestChatRetriesWithoutResponseFormat(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), "response_format") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"response_format is not supported","type":"invalid_request_error"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"plain"}}]}`)
	}))
	defer srv.Close()

	res, err := New(srv.URL, "", time.Second).Chat(context.Background(), llm.Request{Model: "m", ForceJSON: true})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if res.Text != "plain" || calls != 2 {
		t.Fatalf("text=%q calls=%d", res.Text, calls)
	}
}

func TestChatReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "x", time.Second).Chat(context.Background(), llm.Request{Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "openai http 401: bad key") {
		t.Fatalf("Chat() error = %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	c := New("  ", "", 0)
	if c.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
	if c.HTTP.Timeout != 90*time.Second {
		t.Fatalf("timeout = %v", c.HTTP.Timeout)
	}
}

func TestChatNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Chat(context.Background(), llm.Request{Model: "m", ForceJSON: true})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("Chat() error = %v, want APIError 502", err)
	}
	if !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("error should carry the body: %v", err)
	}
}
