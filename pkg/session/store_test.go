package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func testUser() *User {
	return &User{ID: "user_1", Email: "alice@example.com", Name: "Alice", Surname: "Doe", Role: "USER"}
}

// newAuthServer fakes the server side of the login/refresh contract.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid email or password"})
			return
		}
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
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["refreshToken"] != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"token": "access-2"},
		})
	})
	return httptest.NewServer(mux)
}

func newTestStore(t *testing.T, serverURL string, opts ...Option) (*Store, *LocalStore) {
	t.Helper()
	local, err := OpenLocalStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("OpenLocalStore: %v", err)
	}
	store, err := NewStore(serverURL, local, opts...)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, local
}

func TestStore_Login(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()
	store, local := newTestStore(t, srv.URL)

	if store.IsAuthenticated() {
		t.Fatalf("fresh store must be unauthenticated")
	}

	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !store.IsAuthenticated() {
		t.Fatalf("store not authenticated after login")
	}
	if store.AccessToken() != "access-1" || store.RefreshToken() != "refresh-1" {
		t.Fatalf("tokens not held: %q / %q", store.AccessToken(), store.RefreshToken())
	}
	if u := store.CurrentUser(); u == nil || u.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	// Durable state written.
	if v, _ := local.Get("refreshToken"); v != "refresh-1" {
		t.Fatalf("refresh token not persisted: %q", v)
	}
	if v, _ := local.Get("currentUser"); v == "" {
		t.Fatalf("current user not persisted")
	}
}

func TestStore_Login_Failure(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()
	store, local := newTestStore(t, srv.URL)

	err := store.Login(context.Background(), "alice@example.com", "wrong")
	if err == nil {
		t.Fatalf("expected login error")
	}
	if err.Error() != "invalid email or password" {
		t.Fatalf("expected server message, got %q", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("store authenticated after failed login")
	}
	if _, ok := local.Get("refreshToken"); ok {
		t.Fatalf("refresh token persisted on failed login")
	}
}

func TestStore_Logout(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()
	store, local := newTestStore(t, srv.URL)

	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	store.Logout()

	if store.IsAuthenticated() || store.CurrentUser() != nil {
		t.Fatalf("store still authenticated after logout")
	}
	if store.AccessToken() != "" || store.RefreshToken() != "" {
		t.Fatalf("tokens survive logout")
	}
	if _, ok := local.Get("refreshToken"); ok {
		t.Fatalf("refresh token survives logout")
	}
	if _, ok := local.Get("currentUser"); ok {
		t.Fatalf("current user survives logout")
	}
}

func TestStore_Rehydrate(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	local, err := OpenLocalStore(path)
	if err != nil {
		t.Fatalf("OpenLocalStore: %v", err)
	}
	first, err := NewStore(srv.URL, local)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := first.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A "page reload": a fresh store over the same durable state.
	reloaded, err := OpenLocalStore(path)
	if err != nil {
		t.Fatalf("reopen local store: %v", err)
	}
	second, err := NewStore(srv.URL, reloaded)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if second.IsAuthenticated() {
		t.Fatalf("authenticated before rehydration")
	}
	second.Rehydrate()

	if !second.IsAuthenticated() {
		t.Fatalf("rehydration did not restore the session")
	}
	if u := second.CurrentUser(); u == nil || u.ID != "user_1" {
		t.Fatalf("unexpected rehydrated user: %+v", u)
	}
	if second.RefreshToken() != "refresh-1" {
		t.Fatalf("refresh token not rehydrated")
	}
}

func TestStore_Refresh(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()
	store, _ := newTestStore(t, srv.URL)

	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !store.Refresh(context.Background()) {
		t.Fatalf("Refresh failed")
	}
	if store.AccessToken() != "access-2" {
		t.Fatalf("access token not rotated: %q", store.AccessToken())
	}
	if !store.IsAuthenticated() {
		t.Fatalf("refresh dropped the session")
	}
}

func TestStore_Refresh_FailureForcesLogout(t *testing.T) {
	srv := newAuthServer(t)
	defer srv.Close()

	redirected := false
	store, local := newTestStore(t, srv.URL, WithForcedLogoutHandler(func() { redirected = true }))

	if err := store.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Simulate the server revoking the slot (a newer login elsewhere).
	store.mu.Lock()
	store.refreshToken = "stale-token"
	store.mu.Unlock()

	if store.Refresh(context.Background()) {
		t.Fatalf("Refresh succeeded with a revoked token")
	}
	if !redirected {
		t.Fatalf("forced-logout handler not fired")
	}
	if store.IsAuthenticated() {
		t.Fatalf("store still authenticated after forced logout")
	}
	if _, ok := local.Get("refreshToken"); ok {
		t.Fatalf("durable refresh token survives forced logout")
	}
}
