package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	// GetTokenExpiration is the session token lifetime in hours.
	GetTokenExpiration() int
	// GetResetExpiration is the password reset token lifetime in hours.
	GetResetExpiration() int
	// GetAdminEmails is the allow-list of privileged addresses. Matching
	// against it happens once, at account creation.
	GetAdminEmails() []string
}

// UserStore is the record store collaborators must supply. Exact-match
// queries only; missing records surface as CategoryNotFound errors.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetPremium(ctx context.Context, id uuid.UUID, premium bool) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}

// Mailer is the one-way message channel used for reset token delivery.
// Delivery failures are non-fatal to the flow that triggered them.
type Mailer interface {
	Deliver(ctx context.Context, address, payload string) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, address, payload string) error

// Deliver implements Mailer.
func (f MailerFunc) Deliver(ctx context.Context, address, payload string) error {
	if f == nil {
		return nil
	}
	return f(ctx, address, payload)
}

type noopMailer struct{}

func (noopMailer) Deliver(context.Context, string, string) error {
	return nil
}

func normalizeMailer(m Mailer) Mailer {
	if m == nil {
		return noopMailer{}
	}
	return m
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
