package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes give transport layers a stable machine readable discriminator
// without leaking which internal branch produced the failure.
const (
	TextCodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeUnauthenticated   = "UNAUTHENTICATED"
	TextCodeForbidden         = "FORBIDDEN"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenInvalid      = "TOKEN_INVALID"
	TextCodeIdentityNotFound  = "IDENTITY_NOT_FOUND"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
)

// ErrDuplicateIdentity is returned when registering an email that already
// has an account.
var ErrDuplicateIdentity = errors.New("email is already registered", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeDuplicateIdentity)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
// The two cases must stay indistinguishable to callers.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrUnauthenticated is returned when a session token is missing, malformed,
// or expired.
var ErrUnauthenticated = errors.New("a valid session is required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrForbidden is returned when a valid session lacks the required role.
var ErrForbidden = errors.New("administrator access required", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeForbidden)

// ErrTokenExpired means the signature checked out but the expiry is in
// the past.
var ErrTokenExpired = errors.New("token has expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenInvalid means the token is malformed, carries a bad signature, or
// was issued for a different purpose.
var ErrTokenInvalid = errors.New("token is invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenInvalid)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenInvalid) {
		return true
	}

	// Wraps built from the sentinel carry its text code without chaining
	// the sentinel itself.
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenInvalid {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
