// Package token issues and verifies the four kinds of signed, expiring
// credentials the application uses: access, refresh, two-factor and
// activation tokens. Each purpose carries its own signing secret and TTL,
// configured at startup; a missing secret or TTL is a startup failure,
// never a runtime one.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

// Purpose is the closed set of token kinds. Every purpose signs with its own
// secret, so a token issued for one purpose never verifies as another.
type Purpose int

const (
	Access Purpose = iota
	Refresh
	TwoFactor
	Activation
)

// String returns the purpose name used in config errors and metrics labels.
func (p Purpose) String() string {
	switch p {
	case Access:
		return "access"
	case Refresh:
		return "refresh"
	case TwoFactor:
		return "two_factor"
	case Activation:
		return "activation"
	}
	return "unknown"
}

var ErrMissingSecret = errors.New("token: signing secret not configured")
var ErrMissingTTL = errors.New("token: ttl not configured")

// ErrTokenExpired marks a structurally valid token past its TTL, the only
// verification failure that is recoverable (via refresh, where applicable).
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid covers everything else: bad signature, malformed token,
// wrong purpose secret.
var ErrTokenInvalid = errors.New("token invalid")

// PurposeConfig is the secret/TTL pair for one token purpose.
type PurposeConfig struct {
	Secret string
	TTL    time.Duration
}

// Config carries the per-purpose signing configuration.
type Config struct {
	Access     PurposeConfig
	Refresh    PurposeConfig
	TwoFactor  PurposeConfig
	Activation PurposeConfig
}

// Validate returns an error naming the first purpose whose secret or TTL is
// unset. Call it before serving traffic.
func (c Config) Validate() error {
	for _, p := range []Purpose{Access, Refresh, TwoFactor, Activation} {
		pc := c.forPurpose(p)
		if pc.Secret == "" {
			return fmt.Errorf("%w for %s tokens", ErrMissingSecret, p)
		}
		if pc.TTL <= 0 {
			return fmt.Errorf("%w for %s tokens", ErrMissingTTL, p)
		}
	}
	return nil
}

func (c Config) forPurpose(p Purpose) PurposeConfig {
	switch p {
	case Access:
		return c.Access
	case Refresh:
		return c.Refresh
	case TwoFactor:
		return c.TwoFactor
	case Activation:
		return c.Activation
	}
	return PurposeConfig{}
}

// sessionClaims is the wire shape of every token payload. Decoding into this
// struct drops any extra claims a forged token might smuggle in; Verify then
// reduces it further to exactly a domain.UserSession. Activation tokens set
// only email/name/surname.
type sessionClaims struct {
	UserID  string `json:"id,omitempty"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with HS256.
type Codec struct {
	cfg Config
	now func() time.Time
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg, now: time.Now}, nil
}

// Issue signs session under the purpose's secret with the purpose's TTL.
// The fresh jti makes every issuance distinct even within the same second;
// single-slot token storage relies on that to revoke superseded tokens.
func (c *Codec) Issue(p Purpose, session domain.UserSession) (string, error) {
	pc := c.cfg.forPurpose(p)
	now := c.now().UTC()

	claims := sessionClaims{
		UserID:  session.ID,
		Email:   session.Email,
		Name:    session.Name,
		Surname: session.Surname,
		Role:    session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(pc.TTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(pc.Secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", p, err)
	}
	return signed, nil
}

// IssueActivation signs an activation token carrying only the identity of the
// not-yet-enabled account.
func (c *Codec) IssueActivation(email, name, surname string) (string, error) {
	return c.Issue(Activation, domain.UserSession{
		Email:   email,
		Name:    name,
		Surname: surname,
	})
}

// Verify checks raw against the purpose's secret and returns the sanitized
// session. Failures are classified as ErrTokenExpired or ErrTokenInvalid.
func (c *Codec) Verify(p Purpose, raw string) (domain.UserSession, error) {
	pc := c.cfg.forPurpose(p)

	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(pc.Secret), nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.UserSession{}, ErrTokenExpired
		}
		return domain.UserSession{}, ErrTokenInvalid
	}
	if !tkn.Valid {
		return domain.UserSession{}, ErrTokenInvalid
	}

	return domain.UserSession{
		ID:      claims.UserID,
		Email:   claims.Email,
		Name:    claims.Name,
		Surname: claims.Surname,
		Role:    claims.Role,
	}, nil
}
