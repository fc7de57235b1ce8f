package auth_test

import (
	"context"
	"sync"

	auth "github.com/Dorian77580/Lecole-des-genis"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type testConfig struct {
	signingKey      string
	issuer          string
	tokenExpiration int
	resetExpiration int
	adminEmails     []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		issuer:          "test-issuer",
		tokenExpiration: 24 * 7,
		resetExpiration: 1,
		adminEmails:     []string{"marine.alves@ecoledesgenies.com"},
	}
}

func (c *testConfig) GetSigningKey() string    { return c.signingKey }
func (c *testConfig) GetIssuer() string        { return c.issuer }
func (c *testConfig) GetTokenExpiration() int  { return c.tokenExpiration }
func (c *testConfig) GetResetExpiration() int  { return c.resetExpiration }
func (c *testConfig) GetAdminEmails() []string { return c.adminEmails }

// memoryStore is an in-memory UserStore fake with per-record atomicity.
type memoryStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*auth.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byID: map[uuid.UUID]*auth.User{},
	}
}

func notFound() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

func (m *memoryStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, notFound()
}

func (m *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, notFound()
	}
	clone := *u
	return &clone, nil
}

func (m *memoryStore) Create(ctx context.Context, record *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if u.Email == record.Email {
			return nil, auth.ErrDuplicateIdentity
		}
	}

	clone := *record
	m.byID[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (m *memoryStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return notFound()
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memoryStore) SetPremium(ctx context.Context, id uuid.UUID, premium bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return notFound()
	}
	u.IsPremium = premium
	return nil
}

func (m *memoryStore) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return notFound()
	}
	u.IsVerified = verified
	return nil
}

// remove drops a record, simulating a deleted account.
func (m *memoryStore) remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byID, id)
}

// setAdmin flips the administrator flag directly in storage.
func (m *memoryStore) setAdmin(id uuid.UUID, admin bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.byID[id]; ok {
		u.IsAdmin = admin
	}
}

var _ auth.UserStore = (*memoryStore)(nil)

// spyStore wraps a UserStore and counts password mutations so tests can
// assert the store was never touched.
type spyStore struct {
	auth.UserStore
	resetCalls int
}

func (s *spyStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.resetCalls++
	return s.UserStore.ResetPassword(ctx, id, passwordHash)
}

// capturingMailer records deliveries and optionally fails them.
type capturingMailer struct {
	deliveries []delivery
	err        error
}

type delivery struct {
	address string
	payload string
}

func (m *capturingMailer) Deliver(ctx context.Context, address, payload string) error {
	if m.err != nil {
		return m.err
	}
	m.deliveries = append(m.deliveries, delivery{address: address, payload: payload})
	return nil
}

// capturingSink collects activity events.
type capturingSink struct {
	events []auth.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt auth.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}
