// Package token implements the signed bearer-token codec. Tokens are HS256
// JWTs carrying the user id and email; the signing key and TTL are fixed at
// construction. Rotating the key invalidates every previously issued token.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/v3ai2026/vision/internal/model"
)

// Claims is the signed claim set. Subject duplicates UserID so gateway
// consumers that only read standard claims still get the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	// IssuedAtNS carries the issue instant at nanosecond precision; the
	// registered iat claim holds whole seconds only, which is too coarse
	// to order tokens reissued in quick succession.
	IssuedAtNS int64 `json:"iat_ns,omitempty"`
}

// IssuedTime returns the issue instant, preferring the nanosecond claim
// over the second-precision registered one.
func (c *Claims) IssuedTime() time.Time {
	if c.IssuedAtNS > 0 {
		return time.Unix(0, c.IssuedAtNS).UTC()
	}
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a fresh token for the given user. ExpiresAt is always
// IssuedAt plus the configured TTL; the random jti guarantees two issues
// for the same user never produce the same token string.
func (c *Codec) Issue(userID string, username string) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID:     userID,
		Username:   username,
		IssuedAtNS: now.UnixNano(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token and returns its claims.
// Forged, malformed and expired tokens all come back as ErrInvalidToken;
// expired ones additionally match ErrTokenExpired.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// HS256 only; HS384/HS512 under the same secret do not pass.
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", model.ErrInvalidToken, model.ErrTokenExpired)
		}
		return nil, model.ErrInvalidToken
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

// Decode extracts claims without checking the signature. Only for use on
// tokens that already passed Verify.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, model.ErrInvalidToken
	}
	return claims, nil
}
