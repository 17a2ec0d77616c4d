package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/myflix/movie-api/internal/config"
)

// Distinguishable token rejection reasons.
var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token has expired")
)

// Codec signs and verifies self-contained HS256 tokens. The subject
// claim is always the immutable user id: a username can change via
// profile update, which would orphan every previously issued token.
type Codec struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
}

// NewCodec creates a token codec from the process JWT configuration.
func NewCodec(cfg *config.JWTConfig) *Codec {
	return &Codec{
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// Issue produces a signed token for the given user id, expiring TTL
// from now. It returns the compact token and its expiry time.
func (c *Codec) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{c.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks structure, signature, expiry, issuer, and audience,
// and returns the subject user id. Rejections map to one of the
// package sentinel errors so callers can tell them apart.
func (c *Codec) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignature
		default:
			return "", fmt.Errorf("%w: %s", ErrTokenMalformed, err)
		}
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenMalformed
	}

	return claims.Subject, nil
}
