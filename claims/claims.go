package claims

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates access tokens from refresh tokens inside the signed
// payload. A codec never accepts a token of the wrong kind on behalf of a
// caller; the kind check belongs to the token service.
type Kind string

const (
	// KindAccess marks a short-lived bearer token presented on every request.
	KindAccess Kind = "access"
	// KindRefresh marks a long-lived token exchanged for new pairs.
	KindRefresh Kind = "refresh"
)

// Valid reports whether k is one of the two known token kinds.
func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// ClaimSet is the signed token payload. Values are immutable once minted; a
// new token is issued instead of mutating claims in place.
//
// Wire field names are fixed: sub, iat, exp, jti, type, roles, entitlements.
type ClaimSet struct {
	Subject      string   `json:"sub"`
	IssuedAt     int64    `json:"iat"`
	ExpiresAt    int64    `json:"exp"`
	TokenID      string   `json:"jti"`
	Kind         Kind     `json:"type"`
	Roles        []string `json:"roles,omitempty"`
	Entitlements []string `json:"entitlements,omitempty"`
}

// GetExpirationTime implements [jwt.Claims].
func (c *ClaimSet) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

// GetIssuedAt implements [jwt.Claims].
func (c *ClaimSet) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

// GetNotBefore implements [jwt.Claims].
func (c *ClaimSet) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements [jwt.Claims].
func (c *ClaimSet) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements [jwt.Claims].
func (c *ClaimSet) GetSubject() (string, error) {
	return c.Subject, nil
}

// GetAudience implements [jwt.Claims].
func (c *ClaimSet) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
