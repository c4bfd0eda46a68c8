package github

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SimasDei/dev-bastion/internal/apperror"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/ada/repos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("per_page"); got != "5" {
			t.Errorf("per_page = %q, want 5", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"name": "compiler", "html_url": "https://github.com/ada/compiler",
			 "description": "a compiler", "stargazers_count": 7, "watchers_count": 7, "forks_count": 2}
		]`)
	}))
	defer server.Close()

	client := newClient(server.URL, "", "", testLogger())

	repos, err := client.Repos(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Repos() error = %v", err)
	}
	if len(repos) != 1 {
		t.Fatalf("Repos() returned %d repos, want 1", len(repos))
	}
	if repos[0].Name != "compiler" || repos[0].Stargazers != 7 {
		t.Errorf("Repos()[0] = %+v", repos[0])
	}
}

func TestRepos_UnknownUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := newClient(server.URL, "", "", testLogger())

	_, err := client.Repos(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Repos(unknown user) error = %v, want ErrNotFound", err)
	}
}

func TestRepos_EmptyUsername(t *testing.T) {
	client := newClient("http://unused", "", "", testLogger())

	_, err := client.Repos(context.Background(), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Repos(\"\") error = %v, want ErrValidation", err)
	}
}

func TestRepos_TransportFailureRetriesThenUpstream(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		// Drop the connection so the client sees a transport error.
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("hijack failed: %v", err)
		}
		conn.Close()
	}))
	defer server.Close()

	client := newClient(server.URL, "", "", testLogger())

	_, err := client.Repos(context.Background(), "ada")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("Repos(transport failure) error = %v, want ErrUpstream", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (one retry)", attempts)
	}
}

func TestRepos_SecondAttemptSucceeds(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			hj := w.(http.Hijacker)
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	client := newClient(server.URL, "", "", testLogger())

	repos, err := client.Repos(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Repos() error = %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("Repos() returned %d repos, want 0", len(repos))
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}
