// Package auth builds, signs and verifies the bearer tokens handed out by the
// authentication service. Tokens are JWTs signed with HMAC-SHA-256 using a
// symmetric key supplied by configuration.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 30 * 24 * time.Hour

// MinKeyLength is the minimum signing key size in bytes (256 bits).
const MinKeyLength = 32

var (
	ErrMissingSigningKey = errors.New("signing key is not configured")
	ErrWeakSigningKey    = fmt.Errorf("signing key must be at least %d bytes", MinKeyLength)
)

// SignedToken is a serialized token together with its expiry.
type SignedToken struct {
	Value     string
	ExpiresAt time.Time
}

// ParsedToken is the verified content of a token.
type ParsedToken struct {
	Claims    []Claim
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CheckSigningKey rejects keys that are absent or shorter than MinKeyLength.
func CheckSigningKey(key []byte) error {
	if len(key) == 0 {
		return ErrMissingSigningKey
	}
	if len(key) < MinKeyLength {
		return ErrWeakSigningKey
	}
	return nil
}

// Issuer signs claim sets into tokens. It is immutable after construction and
// safe for concurrent use.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
}

// NewIssuer validates the signing key and returns an Issuer that stamps
// issuer and audience verbatim into every token.
func NewIssuer(key []byte, issuer, audience string) (*Issuer, error) {
	if err := CheckSigningKey(key); err != nil {
		return nil, err
	}
	return &Issuer{key: append([]byte(nil), key...), issuer: issuer, audience: audience}, nil
}

// Issue signs claims into a token valid from now until now+TokenLifetime.
func (i *Issuer) Issue(claims []Claim, now time.Time) (SignedToken, error) {
	expires := jwt.NewNumericDate(now.Add(TokenLifetime))
	p := &payload{
		claims:    claims,
		issuer:    i.issuer,
		audience:  jwt.ClaimStrings{i.audience},
		issuedAt:  jwt.NewNumericDate(now),
		expiresAt: expires,
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, p).SignedString(i.key)
	if err != nil {
		return SignedToken{}, fmt.Errorf("sign token: %w", err)
	}

	return SignedToken{Value: value, ExpiresAt: expires.Time.UTC()}, nil
}

// Verifier checks tokens produced by an Issuer configured with the same key,
// issuer and audience.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(key []byte, issuer, audience string) (*Verifier, error) {
	if err := CheckSigningKey(key); err != nil {
		return nil, err
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	return &Verifier{key: append([]byte(nil), key...), parser: parser}, nil
}

// Parse verifies the signature and time bounds of tokenString and returns its
// claims. Expired tokens yield common.ErrTokenExpired; every other failure
// wraps common.ErrInvalidToken.
func (v *Verifier) Parse(tokenString string) (*ParsedToken, error) {
	p := &payload{}

	token, err := v.parser.ParseWithClaims(tokenString, p, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	parsed := &ParsedToken{
		Claims:   p.claims,
		Issuer:   p.issuer,
		Audience: p.audience,
	}
	if p.issuedAt != nil {
		parsed.IssuedAt = p.issuedAt.Time.UTC()
	}
	if p.expiresAt != nil {
		parsed.ExpiresAt = p.expiresAt.Time.UTC()
	}
	return parsed, nil
}
