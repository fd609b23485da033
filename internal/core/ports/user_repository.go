package ports

import (
	"context"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

// AccessUpdate carries the admin-editable fields of an account. Nil means
// "leave unchanged".
type AccessUpdate struct {
	Status *string
	Role   *string
}

// UserRepository defines persistence operations for accounts. Token slots are
// single-slot by construction: every setter overwrites the previous value.
type UserRepository interface {
	// Create inserts a new account and returns it with its assigned ID.
	// Returns domain.ErrDuplicateEmail when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// SetSessionTokens overwrites the refresh and two-factor slots in one write.
	SetSessionTokens(ctx context.Context, id, refreshToken, twoFactorToken string) error
	SetActivationToken(ctx context.Context, id, token string) error
	ClearTwoFactorToken(ctx context.Context, id string) error

	// Activate enables the account, marks it ACTIVE and clears the
	// activation slot.
	Activate(ctx context.Context, id string) error

	SetPassword(ctx context.Context, id, passwordHash string) error
	SetLanguage(ctx context.Context, id, language string) error

	// UpdateAccess applies an admin status/role change and returns the
	// updated account.
	UpdateAccess(ctx context.Context, id string, update AccessUpdate) (*domain.User, error)
}
