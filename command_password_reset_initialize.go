package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

// InitializePasswordResetResponse always reports success to the caller so an
// unknown email is indistinguishable from a known one. Delivered is internal
// detail for collaborators that want to surface a soft retry hint.
type InitializePasswordResetResponse struct {
	Delivered bool
	Success   bool
}

// InitializePasswordResetHandler issues a short lived reset token and hands
// it to the message channel. No reset state is persisted: a token stays
// valid until its expiry whether or not a newer one was issued.
type InitializePasswordResetHandler struct {
	creds    *CredentialStore
	tokens   TokenService
	mailer   Mailer
	activity ActivitySink
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(creds *CredentialStore, tokens TokenService, mailer Mailer) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		creds:    creds,
		tokens:   tokens,
		mailer:   normalizeMailer(mailer),
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit reset request events.
func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{Success: true}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.creds.GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.Is(err, ErrIdentityNotFound) {
			// Same acknowledgment as the known-email case; no token
			// is issued.
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := h.tokens.IssueReset(user.Email)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue password reset token")
	}

	if err := h.mailer.Deliver(ctx, user.Email, resetPayload(token)); err != nil {
		// Delivery failure is non-fatal: the token stays valid until its
		// expiry and the user can request a fresh one.
		h.logger.Warn("password reset delivery failed", "email", user.Email, "error", err)
	} else {
		resp.Delivered = true
	}

	h.recordActivity(ctx, user, resp.Delivered)

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, user *User, delivered bool) {
	evt := ActivityEvent{
		EventType: ActivityEventResetRequested,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID: user.ID.String(),
		Metadata: map[string]any{
			"delivered": delivered,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, evt); err != nil {
		h.logger.Warn("activity sink error during password reset request: %v", err)
	}
}

func resetPayload(token string) string {
	return fmt.Sprintf("/password-reset/%s", token)
}
