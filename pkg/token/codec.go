package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime embedded in issued tokens.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrClaimsIncomplete is returned by Issue when id or username is empty.
	ErrClaimsIncomplete = errors.New("token: id and username are required")

	// ErrInvalid indicates a token whose structure or signature does not verify.
	ErrInvalid = errors.New("token: invalid")

	// ErrExpired indicates a correctly signed token whose exp has passed.
	ErrExpired = errors.New("token: expired")
)

// Claims is the payload carried by a session token.
//
// Exp is whole seconds since the Unix epoch.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Exp      uint64 `json:"exp"`
}

// GetExpirationTime implements jwt.Claims. A zero Exp is reported as absent so
// the parser's required-exp check rejects it.
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.Exp == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(int64(c.Exp), 0)), nil
}

// GetIssuedAt implements jwt.Claims.
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) { return nil, nil }

// GetNotBefore implements jwt.Claims.
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

// GetIssuer implements jwt.Claims.
func (c *Claims) GetIssuer() (string, error) { return "", nil }

// GetSubject implements jwt.Claims.
func (c *Claims) GetSubject() (string, error) { return c.ID, nil }

// GetAudience implements jwt.Claims.
func (c *Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// Codec signs and verifies HS256 tokens with a shared secret.
//
// A Codec is safe for concurrent use; it holds no mutable state.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		c.ttl = ttl
	}
}

// WithClock replaces the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec signing with secret.
func NewCodec(secret []byte, opts ...Option) *Codec {
	c := &Codec{
		secret: secret,
		ttl:    DefaultTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	return c
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given subject expiring TTL from now.
func (c *Codec) Issue(id, username string) (string, error) {
	if id == "" || username == "" {
		return "", ErrClaimsIncomplete
	}

	claims := &Claims{
		ID:       id,
		Username: username,
		Exp:      uint64(c.now().Add(c.ttl).Unix()),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, structure and expiry, in that order, and returns
// the embedded claims.
//
// Expiry is strict: a token whose exp equals the current second is expired.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if !tok.Valid {
		return nil, ErrInvalid
	}

	return claims, nil
}
