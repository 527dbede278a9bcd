package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/universa-bio/origin/internal/core"
)

func streamingServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			t.Errorf("missing authorization header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range chunks {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", c)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestRefine_AccumulatesStreamedChunks(t *testing.T) {
	// The refined prompt JSON arrives split across chunks; only the
	// assembled whole is parseable.
	srv := streamingServer(t, []string{`{"resp`, `onse": "a thermosta`, `ble enzyme prompt"}`})
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, Model: "mistral-small", APIKey: "test-key"}, nil)
	got, err := c.Refine(context.Background(), []string{"design a thermostable enzyme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a thermostable enzyme prompt" {
		t.Fatalf("unexpected refined prompt: %q", got)
	}
}

func TestRefine_MissingAPIKey(t *testing.T) {
	c := New(Config{Endpoint: "http://unused", Model: "m"}, nil)
	_, err := c.Refine(context.Background(), []string{"x"})
	if !core.IsCategory(err, core.ErrCatConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestRefine_MalformedReply(t *testing.T) {
	srv := streamingServer(t, []string{"not json at all"})
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, Model: "m", APIKey: "k"}, nil)
	_, err := c.Refine(context.Background(), []string{"x"})
	if !core.IsCategory(err, core.ErrCatMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestRefine_EmptyResponseField(t *testing.T) {
	srv := streamingServer(t, []string{`{"response": "  "}`})
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, Model: "m", APIKey: "k"}, nil)
	_, err := c.Refine(context.Background(), []string{"x"})
	if !core.IsCategory(err, core.ErrCatMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestRefine_UpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, Model: "m", APIKey: "k"}, nil)
	_, err := c.Refine(context.Background(), []string{"x"})
	if !core.IsCategory(err, core.ErrCatUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestRefine_Unreachable(t *testing.T) {
	c := New(Config{Endpoint: "http://127.0.0.1:1", Model: "m", APIKey: "k", Timeout: time.Second}, nil)
	_, err := c.Refine(context.Background(), []string{"x"})
	var domErr *core.DomainError
	if !errors.As(err, &domErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domErr.Category != core.ErrCatUpstream && domErr.Category != core.ErrCatTimeout {
		t.Fatalf("expected upstream or timeout, got %s", domErr.Category)
	}
}

func TestParseRefinedPrompt(t *testing.T) {
	if _, err := parseRefinedPrompt(""); err == nil {
		t.Fatalf("empty reply should fail")
	}
	got, err := parseRefinedPrompt(`  {"response": " trimmed "} `)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "trimmed" {
		t.Fatalf("expected trimmed response, got %q", got)
	}
}
