package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

const (
	// DefaultSessionExpiration is the session token lifetime in hours when
	// the configuration does not set one. Seven days.
	DefaultSessionExpiration = 24 * 7
	// DefaultResetExpiration is the reset token lifetime in hours.
	DefaultResetExpiration = 1
)

// TokenService issues and verifies the two kinds of signed, time bounded
// tokens the core works with.
type TokenService interface {
	IssueSession(identity Identity) (string, error)
	IssueReset(email string) (string, error)
	Validate(tokenString string, purpose TokenPurpose) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	resetExpiration int
	issuer          string
	logger          Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	tokenExpiration := cfg.GetTokenExpiration()
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultSessionExpiration
	}

	resetExpiration := cfg.GetResetExpiration()
	if resetExpiration <= 0 {
		resetExpiration = DefaultResetExpiration
	}

	return &TokenServiceImpl{
		signingKey:      []byte(cfg.GetSigningKey()),
		tokenExpiration: tokenExpiration,
		resetExpiration: resetExpiration,
		issuer:          cfg.GetIssuer(),
		logger:          logger,
	}
}

// IssueSession creates a session token for the given identity. The claim set
// is self contained; nothing is persisted server side.
func (ts *TokenServiceImpl) IssueSession(identity Identity) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID:          identity.ID(),
		Email:        identity.Email(),
		UserRole:     identity.Role(),
		TokenPurpose: PurposeSession,
	}

	return ts.SignClaims(claims)
}

// IssueReset creates a short lived password reset token bound to an email
// address. There is no single-use tracking: the token stays redeemable until
// its expiry.
func (ts *TokenServiceImpl) IssueReset(email string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.resetExpiration) * time.Hour)),
		},
		Email:        email,
		TokenPurpose: PurposeReset,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses a token string and checks signature, expiry, and purpose.
// Expired-but-authentic tokens fail with ErrTokenExpired so callers can give
// a precise message; everything else fails with ErrTokenInvalid.
func (ts *TokenServiceImpl) Validate(tokenString string, purpose TokenPurpose) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, ErrTokenInvalid
	}

	if claims.TokenPurpose != purpose {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
