// Package session is the client-side half of the authentication lifecycle:
// a session store that mirrors the server contract (access token in a
// cookie, refresh token and current user in durable local storage) and a
// fetch helper that transparently retries a request exactly once after an
// expired-token signal.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// Keys in the durable local store.
const (
	localKeyRefreshToken = "refreshToken"
	localKeyCurrentUser  = "currentUser"
)

// AccessCookieName is the cookie the access token lives in. The cookie is
// the access token's source of truth across restarts.
const AccessCookieName = "token"

// User is the sanitized session identity returned by the server.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Role    string `json:"role"`
}

// ErrNotAuthenticated is returned by operations that need a session when no
// login has happened and nothing could be rehydrated.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Store holds the client session state machine: unauthenticated or
// authenticated, with the invariant that the store is authenticated exactly
// when a current user is held.
type Store struct {
	mu           sync.Mutex
	currentUser  *User
	accessToken  string
	refreshToken string

	baseURL *url.URL
	client  *http.Client
	jar     http.CookieJar
	local   *LocalStore

	// onForcedLogout runs after a failed refresh has already cleared the
	// session; the web client navigates to the login page here. The
	// callback is fire-and-forget: Refresh does not wait on its effects.
	onForcedLogout func()
}

// Option customizes a Store.
type Option func(*Store)

// WithHTTPClient substitutes the HTTP client. A cookie jar is installed on
// it if it has none.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) { s.client = client }
}

// WithForcedLogoutHandler sets the hook run when a refresh failure forces a
// logout.
func WithForcedLogoutHandler(fn func()) Option {
	return func(s *Store) { s.onForcedLogout = fn }
}

// NewStore creates a Store talking to the server at baseURL, persisting
// durable state in local. The returned store is unauthenticated until Login
// or Rehydrate.
func NewStore(baseURL string, local *LocalStore, opts ...Option) (*Store, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("session: parse base url: %w", err)
	}

	s := &Store{
		baseURL: u,
		local:   local,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("session: cookie jar: %w", err)
		}
		s.client.Jar = jar
	}
	s.jar = s.client.Jar
	return s, nil
}

// IsAuthenticated reports whether a current user is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser != nil
}

// CurrentUser returns a copy of the held user, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return nil
	}
	u := *s.currentUser
	return &u
}

// AccessToken returns the held access token, possibly stale.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the held refresh token.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// Rehydrate restores session state without a network round-trip: the user
// and refresh token from local storage, the access token from the cookie.
// Call it once at startup. A stale access token is acceptable; the first
// request it fails on triggers the normal refresh path.
func (s *Store) Rehydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentUser == nil {
		if raw, ok := s.local.Get(localKeyCurrentUser); ok && raw != "" {
			var u User
			if err := json.Unmarshal([]byte(raw), &u); err == nil {
				s.currentUser = &u
			}
		}
	}
	if s.refreshToken == "" {
		if tok, ok := s.local.Get(localKeyRefreshToken); ok {
			s.refreshToken = tok
		}
	}
	if s.accessToken == "" {
		s.accessToken = s.readAccessCookie()
	}
}

type loginEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
		Session      *User  `json:"session"`
	} `json:"data"`
}

// Login authenticates against the server. On success the access token is
// written to the cookie, the refresh token and user to local storage, and
// the in-memory state flips to authenticated. On failure the state is left
// unauthenticated and the server's message is returned as the error.
func (s *Store) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}

	resp, err := s.post(ctx, "/api/login", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope loginEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("session: decode login response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil || envelope.Data.Session == nil {
		if envelope.Message != "" {
			return errors.New(envelope.Message)
		}
		return fmt.Errorf("session: login failed: %s", resp.Status)
	}

	userJSON, err := json.Marshal(envelope.Data.Session)
	if err != nil {
		return err
	}
	if err := s.local.Set(localKeyRefreshToken, envelope.Data.RefreshToken); err != nil {
		return err
	}
	if err := s.local.Set(localKeyCurrentUser, string(userJSON)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeAccessCookie(envelope.Data.Token)
	s.accessToken = envelope.Data.Token
	s.refreshToken = envelope.Data.RefreshToken
	s.currentUser = envelope.Data.Session
	return nil
}

// Logout clears the session: cookie expired, memory cleared, durable keys
// removed. Purely local; the server keeps no access-token state to revoke.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked()
}

func (s *Store) logoutLocked() {
	s.expireAccessCookie()
	s.currentUser = nil
	s.accessToken = ""
	s.refreshToken = ""
	_ = s.local.Delete(localKeyRefreshToken)
	_ = s.local.Delete(localKeyCurrentUser)
}

type refreshEnvelope struct {
	Success bool `json:"success"`
	Data    *struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Refresh posts the held refresh token and installs the new access token on
// success. Any failure, network error or rejected refresh token alike, forces
// a logout and fires the forced-logout handler; callers that were about to
// retry a request must treat false as "already redirecting, abandon retry".
func (s *Store) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	refreshToken := s.refreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		s.forceLogout()
		return false
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		s.forceLogout()
		return false
	}

	resp, err := s.post(ctx, "/api/refresh", body)
	if err != nil {
		s.forceLogout()
		return false
	}
	defer resp.Body.Close()

	var envelope refreshEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		s.forceLogout()
		return false
	}
	if !envelope.Success || envelope.Data == nil || envelope.Data.Token == "" {
		s.forceLogout()
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeAccessCookie(envelope.Data.Token)
	s.accessToken = envelope.Data.Token
	return true
}

func (s *Store) forceLogout() {
	s.Logout()
	if s.onForcedLogout != nil {
		s.onForcedLogout()
	}
}

func (s *Store) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL.JoinPath(path).String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.client.Do(req)
}

// Cookie helpers. Caller holds mu.

func (s *Store) readAccessCookie() string {
	for _, ck := range s.jar.Cookies(s.baseURL) {
		if ck.Name == AccessCookieName {
			return ck.Value
		}
	}
	return ""
}

func (s *Store) writeAccessCookie(token string) {
	s.jar.SetCookies(s.baseURL, []*http.Cookie{{
		Name:  AccessCookieName,
		Value: token,
		Path:  "/",
	}})
}

func (s *Store) expireAccessCookie() {
	s.jar.SetCookies(s.baseURL, []*http.Cookie{{
		Name:   AccessCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}
