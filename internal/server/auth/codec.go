// Package auth implements the access token codec: short-lived, self-verifying
// HS256 JWTs carrying the subject id, email and role. Verification is
// stateless; no store lookup happens per request.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Anish-3-12/public-issue/internal/common"
	"github.com/Anish-3-12/public-issue/internal/server/models"
)

// minSecretLen enforces >= 256 bits of key material for HS256.
const minSecretLen = 32

// Claims are the token's payload: registered claims (sub, iat, exp) plus the
// user's email and role.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access tokens. The signing key and TTL are fixed
// at construction; a Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("access token TTL must be positive")
	}
	return &Codec{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured access token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue mints a token for the user with iat = now and exp = now + TTL.
func (c *Codec) Issue(userID, email string, role models.Role, now time.Time) (string, error) {
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry against the supplied time and returns
// the claims. Failures map onto the shared taxonomy: common.ErrTokenMalformed,
// common.ErrBadSignature, common.ErrTokenExpired. A token whose signature
// verifies but whose expiry has passed is Expired, not valid.
func (c *Codec) Verify(tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, common.ErrInvalidToken
		}
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if _, err := models.ParseRole(claims.Role.String()); err != nil {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ExtractSubject returns the subject (user id) of a valid token, or "" on
// any verification failure. The middleware treats every failure class
// uniformly as "not authenticated", so no error is surfaced here.
func (c *Codec) ExtractSubject(tokenString string, now time.Time) string {
	claims, err := c.Verify(tokenString, now)
	if err != nil {
		return ""
	}
	return claims.Subject
}
