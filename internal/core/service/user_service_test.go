package service

import (
	"context"
	"errors"
	"testing"

	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
)

func seedUser(t *testing.T, repo *stubUserRepo, email string) *domain.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &domain.User{
		Email:    email,
		Name:     "Test",
		Surname:  "User",
		Role:     domain.RoleUser,
		Status:   domain.StatusActive,
		Enabled:  true,
		Language: domain.LanguageEN,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestUserService_UpdateAccess(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	user := seedUser(t, repo, "alice@example.com")

	status := domain.StatusSuspended
	role := domain.RoleAdmin
	updated, err := svc.UpdateAccess(context.Background(), user.ID, ports.AccessUpdate{Status: &status, Role: &role})
	if err != nil {
		t.Fatalf("UpdateAccess: %v", err)
	}
	if updated.Status != domain.StatusSuspended || updated.Role != domain.RoleAdmin {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestUserService_UpdateAccess_Invalid(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	user := seedUser(t, repo, "alice@example.com")

	bad := "BANNED"
	if _, err := svc.UpdateAccess(context.Background(), user.ID, ports.AccessUpdate{Status: &bad}); !errors.Is(err, domain.ErrInvalidAccessUpdate) {
		t.Fatalf("expected ErrInvalidAccessUpdate, got %v", err)
	}

	badRole := "SUPERUSER"
	if _, err := svc.UpdateAccess(context.Background(), user.ID, ports.AccessUpdate{Role: &badRole}); !errors.Is(err, domain.ErrInvalidAccessUpdate) {
		t.Fatalf("expected ErrInvalidAccessUpdate, got %v", err)
	}
}

func TestUserService_SetLanguage(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)
	user := seedUser(t, repo, "alice@example.com")

	if err := svc.SetLanguage(context.Background(), user.ID, domain.LanguageJA); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.Language != domain.LanguageJA {
		t.Fatalf("language not stored: %q", stored.Language)
	}

	if err := svc.SetLanguage(context.Background(), user.ID, "FR"); !errors.Is(err, domain.ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
}
