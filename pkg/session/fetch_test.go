package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

// moveBase repoints an already-logged-in store at a different test server.
func moveBase(t *testing.T, s *Store, raw string) {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	s.baseURL = u
}

func TestFetch_PassesBearerToken(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()
	store, _ := newTestStore(t, srv.URL)
	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	var gotAuth string
	resource := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer resource.Close()

	// Point the store's requests at the resource server.
	moveBase(t, store, resource.URL)

	body, err := store.Fetch(context.Background(), http.MethodGet, "/api/posts", nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != `{"success":true}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if gotAuth != "Bearer access-1" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
}

func TestFetch_RefreshAndRetryOnce(t *testing.T) {
	var resourceHits, refreshHits atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token":        "stale",
				"refreshToken": "refresh-1",
				"session":      testUser(),
			},
		})
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshHits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"token": "fresh"},
		})
	})
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		resourceHits.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(StatusTokenExpired)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store, _ := newTestStore(t, srv.URL)
	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	body, err := store.Fetch(context.Background(), http.MethodGet, "/api/posts", nil)
	if err != nil {
		t.Fatalf("Fetch after refresh: %v", err)
	}
	if string(body) != `[]` {
		t.Fatalf("unexpected body: %s", body)
	}
	if n := refreshHits.Load(); n != 1 {
		t.Fatalf("refresh called %d times, want 1", n)
	}
	if n := resourceHits.Load(); n != 2 {
		t.Fatalf("resource hit %d times, want original plus one retry", n)
	}
	if store.AccessToken() != "fresh" {
		t.Fatalf("access token not rotated after retry")
	}
}

func TestFetch_AlwaysExpiredStopsAfterOneRetry(t *testing.T) {
	var resourceHits, refreshHits atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token":        "access-1",
				"refreshToken": "refresh-1",
				"session":      testUser(),
			},
		})
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshHits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"token": "access-2"},
		})
	})
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		resourceHits.Add(1)
		w.WriteHeader(StatusTokenExpired)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store, _ := newTestStore(t, srv.URL)
	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err := store.Fetch(context.Background(), http.MethodGet, "/api/posts", nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if n := refreshHits.Load(); n != 1 {
		t.Fatalf("refresh called %d times, want exactly 1", n)
	}
	if n := resourceHits.Load(); n != 2 {
		t.Fatalf("resource hit %d times, want exactly 2", n)
	}
}

func TestFetch_RefreshFailureForcesLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token":        "access-1",
				"refreshToken": "refresh-1",
				"session":      testUser(),
			},
		})
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	})
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(StatusTokenExpired)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	redirected := false
	store, _ := newTestStore(t, srv.URL, WithForcedLogoutHandler(func() { redirected = true }))
	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err := store.Fetch(context.Background(), http.MethodGet, "/api/posts", nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !redirected {
		t.Fatalf("forced-logout handler not fired")
	}
	if store.IsAuthenticated() {
		t.Fatalf("store still authenticated after failed refresh")
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()
	store, _ := newTestStore(t, srv.URL)
	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	resource := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer resource.Close()
	moveBase(t, store, resource.URL)

	_, err := store.Fetch(context.Background(), http.MethodGet, "/api/admin/users", nil)
	if err == nil || errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected plain request error, got %v", err)
	}
}
