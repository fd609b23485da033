package service

import (
	"context"
	"fmt"

	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
)

// UserService implements account administration and user preferences.
type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) UpdateAccess(ctx context.Context, userID string, update ports.AccessUpdate) (*domain.User, error) {
	if update.Status != nil && !domain.ValidStatus(*update.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidAccessUpdate, *update.Status)
	}
	if update.Role != nil && !domain.ValidRole(*update.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidAccessUpdate, *update.Role)
	}
	return s.users.UpdateAccess(ctx, userID, update)
}

func (s *UserService) SetLanguage(ctx context.Context, userID, language string) error {
	if !domain.ValidLanguage(language) {
		return domain.ErrInvalidLanguage
	}
	return s.users.SetLanguage(ctx, userID, language)
}
