package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sports-platform/internal/models"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID      string      `json:"id"`
	Role        models.Role `json:"role"`
	InstituteID string      `json:"instituteId,omitempty"`
}

type claims struct {
	UserID      string `json:"uid"`
	Role        string `json:"role"`
	InstituteID string `json:"iid,omitempty"`
	jwt.RegisteredClaims
}

const issuer = "sports-platform"

// Issuer signs and verifies HS256 bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	grace  time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret string, ttl, refreshGrace time.Duration, opts ...Option) *Issuer {
	i := &Issuer{secret: []byte(secret), ttl: ttl, grace: refreshGrace, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) Issue(id Identity) (string, error) {
	if id.UserID == "" || !id.Role.Valid() {
		return "", errors.New("issue: incomplete identity")
	}
	now := i.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:      id.UserID,
		Role:        string(id.Role),
		InstituteID: id.InstituteID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	return tok.SignedString(i.secret)
}

// Verify checks signature and expiry and returns the embedded identity.
func (i *Issuer) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMissingToken
	}
	cl, err := i.parse(raw, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}
	return cl.identity()
}

// Refresh reissues a token for the same identity. The presented token must
// carry a valid signature; it may have expired at most grace ago.
func (i *Issuer) Refresh(raw string) (string, Identity, error) {
	if raw == "" {
		return "", Identity{}, ErrMissingToken
	}
	cl, err := i.parse(raw, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", Identity{}, ErrInvalidToken
	}
	if cl.ExpiresAt == nil || cl.Issuer != issuer {
		return "", Identity{}, ErrInvalidToken
	}
	if i.now().After(cl.ExpiresAt.Time.Add(i.grace)) {
		return "", Identity{}, ErrExpiredToken
	}
	id, err := cl.identity()
	if err != nil {
		return "", Identity{}, err
	}
	tok, err := i.Issue(id)
	if err != nil {
		return "", Identity{}, err
	}
	return tok, id, nil
}

func (i *Issuer) parse(raw string, opts ...jwt.ParserOption) (*claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	tok, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	cl, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return cl, nil
}

func (c *claims) identity() (Identity, error) {
	id := Identity{UserID: c.UserID, Role: models.Role(c.Role), InstituteID: c.InstituteID}
	if id.UserID == "" || !id.Role.Valid() {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
