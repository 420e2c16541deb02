package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProviders(t *testing.T) {
	if _, err := New(BraveProvider, "k"); err != nil {
		t.Errorf("brave: %v", err)
	}
	if _, err := New(SerperProvider, "k"); err != nil {
		t.Errorf("serper: %v", err)
	}
	if _, err := New(Provider("altavista"), "k"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestBraveDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Subscription-Token"); got != "test-key" {
			t.Errorf("expected the API key header, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "go generics" {
			t.Errorf("expected the query escaped into q, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"web": map[string]any{
				"results": []map[string]string{
					{"title": "Go Generics", "url": "https://go.dev/doc/tutorial/generics", "description": "Tutorial."},
					{"title": "Proposal", "url": "https://go.dev/blog/generics-proposal", "description": "Blog."},
					{"title": "Extra", "url": "https://example.test", "description": "Over the limit."},
				},
			},
		})
	}))
	defer srv.Close()

	s := Brave{APIKey: "test-key", BaseURL: srv.URL}
	got, err := s.Discover(context.Background(), "go generics", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected results capped at k, got %d", len(got))
	}
	want := Result{Title: "Go Generics", URL: "https://go.dev/doc/tutorial/generics", Snippet: "Tutorial."}
	if got[0] != want {
		t.Errorf("first result: got %+v, want %+v", got[0], want)
	}
}

func TestBraveDiscoverBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := Brave{APIKey: "test-key", BaseURL: srv.URL}
	if _, err := s.Discover(context.Background(), "q", 3); err == nil {
		t.Fatal("expected an error on a non-200 status")
	}
}

func TestSerperDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("expected the API key header, got %q", got)
		}
		var body struct {
			Q   string `json:"q"`
			Num int    `json:"num"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body.Q != "go modules" || body.Num != 3 {
			t.Errorf("unexpected request body: %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{"title": "Go Modules", "link": "https://go.dev/ref/mod", "snippet": "Reference."},
			},
		})
	}))
	defer srv.Close()

	s := Serper{APIKey: "test-key", BaseURL: srv.URL}
	got, err := s.Discover(context.Background(), "go modules", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	want := Result{Title: "Go Modules", URL: "https://go.dev/ref/mod", Snippet: "Reference."}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}
