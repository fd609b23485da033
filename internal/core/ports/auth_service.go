package ports

import (
	"context"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

// AuthService orchestrates the authentication lifecycle: registration,
// activation, login, token refresh, two-factor confirmation and password
// changes.
type AuthService interface {
	// Register creates a PENDING, disabled account and emails an
	// activation link. Returns domain.ErrDuplicateEmail when taken.
	Register(ctx context.Context, email, password, name, surname string) error

	// Activate redeems an activation token. A second redemption fails:
	// either the account is already enabled (domain.ErrAlreadyActivated)
	// or the single-slot stored token no longer matches.
	Activate(ctx context.Context, rawToken string) error

	// Login verifies credentials, mints the token set, persists the
	// refresh/two-factor slots and emails the two-factor link. remoteIP
	// feeds the brute-force throttle.
	Login(ctx context.Context, email, password, remoteIP string) (*domain.TokenSet, error)

	// Refresh re-derives a new access token from a refresh token.
	Refresh(ctx context.Context, rawRefreshToken string) (string, error)

	// ConfirmTwoFactor redeems the emailed two-factor token and clears
	// its slot.
	ConfirmTwoFactor(ctx context.Context, rawToken string) error

	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}
