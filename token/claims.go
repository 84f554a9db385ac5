package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the decoded claims of an access token.
//
// Signatures are not verified; the client only reads what the server put in
// the token to decide when to refresh.
type Claims struct {
	// Raw holds every claim as decoded from JSON.
	Raw map[string]any

	// Subject is the sub claim.
	Subject string

	// ExpiresAt is the exp claim.
	ExpiresAt time.Time

	// IssuedAt is the iat claim, zero if absent.
	IssuedAt time.Time
}

// ValidAt reports whether the token has not expired at t. The comparison is
// made in whole seconds, so a token whose exp equals the current second is
// still valid.
func (c Claims) ValidAt(t time.Time) bool {
	return c.ExpiresAt.Unix() >= t.Unix()
}

var parser = jwt.NewParser()

// ParseClaims decodes the claims of a signed token without verifying it.
func ParseClaims(access string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp == nil {
		return Claims{}, ErrMissingExpiry
	}

	out := Claims{
		Raw:       map[string]any(claims),
		ExpiresAt: exp.Time,
	}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, nil
}
