package ports

import (
	"context"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

// UserService covers account administration and per-user preferences.
type UserService interface {
	// ListUsers returns every account (admin console user table).
	ListUsers(ctx context.Context) ([]*domain.User, error)
	// UpdateAccess changes an account's status and/or role.
	UpdateAccess(ctx context.Context, userID string, update AccessUpdate) (*domain.User, error)
	// SetLanguage stores the caller's UI language preference.
	SetLanguage(ctx context.Context, userID, language string) error
}
