package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell/internal/api/metrics"
	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
	"github.com/inkwellhq/inkwell/internal/core/token"
)

// AuthService implements the authentication lifecycle against a user
// repository, the token codec, a mail dispatcher and a login throttle.
type AuthService struct {
	users    ports.UserRepository
	codec    *token.Codec
	mail     ports.MailDispatcher
	throttle ports.LoginThrottle
	appURL   string
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	codec *token.Codec,
	mail ports.MailDispatcher,
	throttle ports.LoginThrottle,
	appURL string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		codec:    codec,
		mail:     mail,
		throttle: throttle,
		appURL:   appURL,
		log:      log,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name, surname string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("register lookup: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Surname:      surname,
		Role:         domain.RoleUser,
		Status:       domain.StatusPending,
		Enabled:      false,
		Language:     domain.LanguageEN,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	activation, err := s.codec.IssueActivation(user.Email, user.Name, user.Surname)
	if err != nil {
		return err
	}
	if err := s.users.SetActivationToken(ctx, user.ID, activation); err != nil {
		return fmt.Errorf("store activation token: %w", err)
	}

	// Best effort: a failed send is logged by the dispatcher but never
	// rolls back the account we just created.
	link := fmt.Sprintf("%s/activate?token=%s", s.appURL, activation)
	s.mail.Enqueue(ports.Email{
		To:      user.Email,
		Subject: "Activate your account",
		Text:    "Follow this link to activate your account: " + link,
		HTML:    fmt.Sprintf(`<h1>Account activation</h1><p><a href=%q>Activate your account</a></p>`, link),
		Kind:    "activation",
	})

	metrics.RegistrationsTotal.Inc()
	return nil
}

func (s *AuthService) Activate(ctx context.Context, rawToken string) error {
	claims, err := s.codec.Verify(token.Activation, rawToken)
	if err != nil {
		metrics.ActivationsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.ActivationsTotal.WithLabelValues("rejected").Inc()
			return token.ErrTokenInvalid
		}
		return fmt.Errorf("activate lookup: %w", err)
	}

	if user.Enabled {
		metrics.ActivationsTotal.WithLabelValues("already_activated").Inc()
		return domain.ErrAlreadyActivated
	}
	// The stored slot must still hold this exact token; a cleared or
	// overwritten slot means the link was already used or superseded.
	if user.ActivationToken != rawToken {
		metrics.ActivationsTotal.WithLabelValues("rejected").Inc()
		return token.ErrTokenInvalid
	}

	if err := s.users.Activate(ctx, user.ID); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	metrics.ActivationsTotal.WithLabelValues("success").Inc()
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password, remoteIP string) (*domain.TokenSet, error) {
	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email+":"+remoteIP)
		if err != nil {
			// Degrade open: a broken throttle must not lock everyone out.
			s.log.Warn().Err(err).Msg("login throttle unavailable")
		} else if !ok {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Indistinguishable from a wrong password.
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if user.Status == domain.StatusSuspended {
		metrics.LoginsTotal.WithLabelValues("suspended").Inc()
		return nil, domain.ErrAccountSuspended
	}

	if !verifyPassword(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	session := user.Session()

	access, err := s.codec.Issue(token.Access, session)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(token.Refresh, session)
	if err != nil {
		return nil, err
	}
	twoFactor, err := s.codec.Issue(token.TwoFactor, session)
	if err != nil {
		return nil, err
	}

	// Single-slot overwrite: this login invalidates any refresh or
	// two-factor token a previous login persisted.
	if err := s.users.SetSessionTokens(ctx, user.ID, refresh, twoFactor); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store session tokens: %w", err)
	}

	link := fmt.Sprintf("%s/two-factor?token=%s", s.appURL, twoFactor)
	s.mail.Enqueue(ports.Email{
		To:      user.Email,
		Subject: "Confirm your login",
		Text:    "Follow this link to confirm your login: " + link,
		HTML:    fmt.Sprintf(`<p><a href=%q>Click here to confirm your login</a></p>`, link),
		Kind:    "two_factor",
	})

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &domain.TokenSet{
		Token:        access,
		RefreshToken: refresh,
		Session:      session,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (string, error) {
	claims, err := s.codec.Verify(token.Refresh, rawRefreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", token.ErrTokenInvalid
		}
		return "", fmt.Errorf("refresh lookup: %w", err)
	}

	if user.Status == domain.StatusSuspended {
		return "", token.ErrTokenInvalid
	}
	// Only the currently persisted refresh token is honoured; anything
	// older was revoked by a later login's slot overwrite.
	if user.RefreshToken != rawRefreshToken {
		return "", token.ErrTokenInvalid
	}

	return s.codec.Issue(token.Access, user.Session())
}

func (s *AuthService) ConfirmTwoFactor(ctx context.Context, rawToken string) error {
	claims, err := s.codec.Verify(token.TwoFactor, rawToken)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return token.ErrTokenInvalid
		}
		return fmt.Errorf("two-factor lookup: %w", err)
	}

	if user.TwoFactorToken != rawToken {
		return token.ErrTokenInvalid
	}

	return s.users.ClearTwoFactorToken(ctx, user.ID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !verifyPassword(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, user.ID, hash)
}
