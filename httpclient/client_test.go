package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skillsenselab/hostagent/errors"
)

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eureka/apps" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Headers: map[string]string{"Accept": "application/json"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/eureka/apps"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !resp.IsSuccess() || string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected response: %d %s", resp.StatusCode, resp.Body)
	}
}

func TestDoStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.ErrorCode
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound},
		{"server error", http.StatusInternalServerError, errors.ErrCodeCommand},
		{"bad request", http.StatusBadRequest, errors.ErrCodeCommand},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c, _ := New(Config{BaseURL: srv.URL})
			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
			if !errors.HasCode(err, tc.wantCode) {
				t.Errorf("error = %v, want %s", err, tc.wantCode)
			}
			if resp == nil || resp.StatusCode != tc.status {
				t.Errorf("response should still carry the upstream status")
			}
		})
	}
}

func TestDoConnectionRefused(t *testing.T) {
	c, _ := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !errors.HasCode(err, errors.ErrCodeConnection) {
		t.Errorf("error = %v, want CONNECTION_FAILED", err)
	}
}

func TestDoBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "agent" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := New(Config{
		BaseURL: srv.URL,
		Auth:    &AuthConfig{Type: "basic", Username: "agent", Password: "secret"},
	})
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestTypedGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("detail"); got != "full" {
			t.Errorf("query detail = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"billing","port":8080}`))
	}))
	defer srv.Close()

	type app struct {
		Name string `json:"name"`
		Port int    `json:"port"`
	}

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := Get[app](c, context.Background(), "/apps/billing", WithQueryParam("detail", "full"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Data.Name != "billing" || resp.Data.Port != 8080 {
		t.Errorf("decoded = %+v", resp.Data)
	}
}

func TestTypedPostSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := Post[map[string]any](c, context.Background(), "/actuator/pause", map[string]string{})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
}
