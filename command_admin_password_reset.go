package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type AdminPasswordResetMessage struct {
	SessionToken string `json:"-" doc:"Administrator session token"`
	TargetEmail  string `json:"email" doc:"Account whose password gets replaced"`
	Password     string `json:"new_password" doc:"Replacement password"`
}

func (p AdminPasswordResetMessage) Type() string { return "user.admin_password_reset" }

// AdminPasswordResetHandler lets an administrator replace any account's
// password without the token flow, so account recovery never depends on
// email delivery. The authorization gate runs before anything touches the
// target record.
type AdminPasswordResetHandler struct {
	auther   *Auther
	creds    *CredentialStore
	activity ActivitySink
	logger   Logger
}

// NewAdminPasswordResetHandler creates a handler with sane defaults.
func NewAdminPasswordResetHandler(auther *Auther, creds *CredentialStore) *AdminPasswordResetHandler {
	return &AdminPasswordResetHandler{
		auther:   auther,
		creds:    creds,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit override events. The event
// carries actor id, target id and timestamp for the external auditor.
func (h *AdminPasswordResetHandler) WithActivitySink(sink ActivitySink) *AdminPasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *AdminPasswordResetHandler) WithLogger(logger Logger) *AdminPasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *AdminPasswordResetHandler) Execute(ctx context.Context, event AdminPasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admin password reset",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *AdminPasswordResetHandler) execute(ctx context.Context, event AdminPasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	actor, err := h.auther.RequireAdmin(ctx, event.SessionToken)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return ErrUnauthenticated
	}

	target, err := h.creds.GetByEmail(ctx, event.TargetEmail)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not resolve target account")
	}

	// No knowledge of the current password is required; the overwrite is
	// unconditional and idempotent from the caller's perspective.
	if err := h.creds.SetPassword(ctx, target.ID, event.Password); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to replace target password")
	}

	h.recordActivity(ctx, actor, target)

	return nil
}

func (h *AdminPasswordResetHandler) recordActivity(ctx context.Context, actor *UserSummary, target *User) {
	event := ActivityEvent{
		EventType: ActivityEventAdminPasswordReset,
		Actor: ActorRef{
			ID:   actor.ID.String(),
			Type: "admin",
		},
		UserID: target.ID.String(),
		Metadata: map[string]any{
			"target_email": target.Email,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during admin password reset: %v", err)
	}
}
