package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AuthResult is what login and registration hand back to the caller: a
// bearer session token plus the account summary.
type AuthResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// Auther holds methods to resolve who a request claims to be and what that
// identity may see.
type Auther struct {
	creds        *CredentialStore
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(creds *CredentialStore, cfg Config) *Auther {
	return &Auther{
		creds:        creds,
		tokenService: NewTokenService(cfg, defLogger{}),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token codec, mostly for tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Credentials returns the underlying credential store.
func (s *Auther) Credentials() *CredentialStore {
	return s.creds
}

// Login verifies an email/password pair and issues a session token.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.creds.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify credentials error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	token, err := s.tokenService.IssueSession(identityFromUser(user))
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromUser(user), user.ID.String(), map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromUser(user), user.ID.String(), map[string]any{
		"email": email,
	})

	return &AuthResult{Token: token, User: user.Summary()}, nil
}

// CurrentIdentity resolves the account behind a session token. The record is
// read fresh from the store so the summary reflects flag changes made after
// the token was issued.
func (s *Auther) CurrentIdentity(ctx context.Context, token string) (*UserSummary, error) {
	user, err := s.userFromSessionToken(ctx, token)
	if err != nil {
		return nil, err
	}

	summary := user.Summary()
	return &summary, nil
}

// RequireAdmin verifies the session token and checks the administrator flag
// against the stored record, never against the token claims: a long lived
// session issued before a flag change would otherwise carry stale authority.
func (s *Auther) RequireAdmin(ctx context.Context, token string) (*UserSummary, error) {
	user, err := s.userFromSessionToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin {
		return nil, ErrForbidden
	}

	summary := user.Summary()
	return &summary, nil
}

// ResolveSheetFilter computes the catalogue visibility predicate for the
// identity behind the session token, narrowed by the requested level and
// subject filters.
func (s *Auther) ResolveSheetFilter(ctx context.Context, token, level, subject string) (*SheetFilter, error) {
	user, err := s.userFromSessionToken(ctx, token)
	if err != nil {
		return nil, err
	}

	filter := ResolveSheetFilter(user, level, subject)
	return &filter, nil
}

func (s *Auther) userFromSessionToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokenService.Validate(token, PurposeSession)
	if err != nil {
		s.logger.Debug("session token validation failed", "error", err)
		return nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.creds.GetByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, ErrIdentityNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromUser(user *User) ActorRef {
	if user == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   user.ID.String(),
		Type: "user",
	}
}

type authIdentity struct {
	id    string
	email string
	role  string
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Role() string {
	return a.role
}

var _ Identity = authIdentity{}

func identityFromUser(user *User) Identity {
	return authIdentity{
		id:    user.ID.String(),
		email: user.Email,
		role:  string(user.Role),
	}
}
