// Package auth implements the stateless pieces of the authentication core:
// the signed-token codec and the password hasher.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/agencyhub/internal/common"
	"github.com/dmitrijs2005/agencyhub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PlaceholderSecret is used when no signing secret is configured. Startup
// must not fail on a missing secret; tokens signed elsewhere simply stop
// verifying. The server logs a warning when this value is in effect.
const PlaceholderSecret = "MISSING_JWT_SECRET"

// DefaultTokenTTL is the validity window of issued tokens unless overridden.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claim is the identity carried by an issued token.
type Claim struct {
	UserID string
	Email  string
	Role   models.Role
}

// Claims is the verified content of a token. TokenID is a per-token uuid
// (JWT jti) carried so that a future revocation denylist has a stable key.
type Claims struct {
	Claim
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Codec signs and verifies self-contained identity tokens (HS256 JWT).
// It holds no server-side state: validity is entirely determined by the
// signature and the embedded expiry.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec constructs a Codec. An empty secret falls back to
// PlaceholderSecret instead of failing; a non-positive ttl falls back to
// DefaultTokenTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if secret == "" {
		secret = PlaceholderSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// UsingPlaceholderSecret reports whether the codec runs on the insecure
// fallback secret.
func (c *Codec) UsingPlaceholderSecret() bool {
	return string(c.secret) == PlaceholderSecret
}

// Issue produces a signed token for the claim with the codec's default TTL.
func (c *Codec) Issue(claim Claim) (string, error) {
	return c.IssueWithTTL(claim, c.ttl)
}

// IssueWithTTL produces a signed token for the claim valid for the given
// duration from now.
func (c *Codec) IssueWithTTL(claim Claim, ttl time.Duration) (string, error) {
	now := c.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: claim.UserID,
		Email:  claim.Email,
		Role:   string(claim.Role),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Verify validates the signature and expiry of a token and returns its
// claims. It returns common.ErrTokenExpired once the embedded expiry has
// passed and common.ErrInvalidToken for every other failure.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	result := &Claims{
		Claim: Claim{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   models.Role(claims.Role),
		},
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}
