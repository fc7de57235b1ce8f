package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose discriminates the two claim shapes the codec issues. A reset
// token can never be accepted where a session token is expected, and vice
// versa.
type TokenPurpose = string

const (
	// PurposeSession marks tokens issued at login/registration.
	PurposeSession TokenPurpose = "session"
	// PurposeReset marks tokens issued by the password recovery flow.
	PurposeReset TokenPurpose = "password_reset"
)

// AuthClaims represents the decoded claim set of a verified token.
type AuthClaims interface {
	Subject() string
	UserID() string
	UserEmail() string
	Role() string
	Purpose() TokenPurpose
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID          string `json:"uid,omitempty"`
	Email        string `json:"email,omitempty"`
	UserRole     string `json:"role,omitempty"`
	TokenPurpose string `json:"purpose,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// UserEmail returns the email claim
func (c *JWTClaims) UserEmail() string {
	return c.Email
}

// Role returns the role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Purpose returns the purpose claim
func (c *JWTClaims) Purpose() TokenPurpose {
	return c.TokenPurpose
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
