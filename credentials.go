package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// CredentialStore owns identity records and hashing. Every password or tier
// mutation in the system goes through here; it holds no state of its own
// beyond the injected record store.
type CredentialStore struct {
	store       UserStore
	adminEmails []string
	logger      Logger
}

// NewCredentialStore creates a CredentialStore over the given record store.
// The admin allow-list comes from configuration so the privileged address is
// not baked into logic.
func NewCredentialStore(store UserStore, cfg Config) *CredentialStore {
	return &CredentialStore{
		store:       store,
		adminEmails: cfg.GetAdminEmails(),
		logger:      defLogger{},
	}
}

func (c *CredentialStore) WithLogger(logger Logger) *CredentialStore {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// CreateProfile carries the display fields for a new account.
type CreateProfile struct {
	FirstName string
	LastName  string
}

// Create registers a new identity. The administrator flag is derived here,
// exactly once; no later operation ever re-derives it.
func (c *CredentialStore) Create(ctx context.Context, email, password string, profile CreateProfile, role UserRole) (*User, error) {
	if _, err := c.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for existing account")
	}

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Role:         role,
		IsPremium:    false,
		// Teachers start unverified and go through the external
		// verification workflow; parents have nothing to verify.
		IsVerified: role != RoleTeacher,
		IsAdmin:    c.isAdminEmail(email),
	}
	prepareUserDefaults(user)

	created, err := c.store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			return nil, ErrDuplicateIdentity
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	return created, nil
}

// VerifyCredentials resolves an identity by email and password. Unknown
// email and wrong password return the same ErrInvalidCredentials so callers
// cannot enumerate accounts.
func (c *CredentialStore) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := c.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}

	return user, nil
}

// GetByID re-reads an identity record fresh from the store.
func (c *CredentialStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := c.store.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

// GetByEmail resolves an identity record by exact email match.
func (c *CredentialStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := c.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

// SetPassword overwrites the stored hash unconditionally. Used by both the
// token based recovery redemption and the admin override.
func (c *CredentialStore) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return richErr
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	if err := c.store.ResetPassword(ctx, id, hash); err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update password")
	}

	return nil
}

// SetPremium flips the premium flag. Invoked by the external subscription
// workflow, never by this core's own logic.
func (c *CredentialStore) SetPremium(ctx context.Context, id uuid.UUID, premium bool) error {
	if err := c.store.SetPremium(ctx, id, premium); err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update premium flag")
	}
	return nil
}

// SetVerified flips the verified flag. Invoked by the external teacher
// verification workflow.
func (c *CredentialStore) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	if err := c.store.SetVerified(ctx, id, verified); err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to update verified flag")
	}
	return nil
}

func (c *CredentialStore) isAdminEmail(email string) bool {
	normalized := normalizeEmail(email)
	for _, admin := range c.adminEmails {
		if normalizeEmail(admin) == normalized {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
