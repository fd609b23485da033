package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// StatusTokenExpired is the server's expired-access-token signal. It is the
// only status that triggers the refresh-and-retry below.
const StatusTokenExpired = 498

// ErrSessionExpired is returned when the single refresh-and-retry could not
// rescue a request: the refresh itself failed, or the retried request
// reported expiry again.
var ErrSessionExpired = errors.New("session: expired and refresh failed")

// Fetch performs an authenticated JSON request against the server and
// returns the response body. When the server signals an expired access
// token, Fetch refreshes the session and retries the original request
// exactly once; the bounded loop makes the single-retry contract explicit.
// Any other non-2xx response is surfaced as an error carrying the status.
func (s *Store) Fetch(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	const maxAttempts = 2 // the original request plus one retry

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, s.baseURL.JoinPath(path).String(), reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if tok := s.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == StatusTokenExpired {
			resp.Body.Close()
			if attempt > 0 {
				// The retried request expired again; do not loop.
				return nil, ErrSessionExpired
			}
			// Strictly sequential: the retry is only issued once the
			// refresh response has been observed.
			if !s.Refresh(ctx) {
				// Refresh already forced a logout and is redirecting.
				return nil, ErrSessionExpired
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, fmt.Errorf("session: request failed: %s", resp.Status)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		return data, nil
	}

	return nil, ErrSessionExpired
}
