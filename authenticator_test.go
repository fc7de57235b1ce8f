package auth_test

import (
	"context"
	"testing"

	auth "github.com/Dorian77580/Lecole-des-genis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuther(t *testing.T) (*auth.Auther, *auth.CredentialStore, *memoryStore) {
	t.Helper()

	store := newMemoryStore()
	cfg := newTestConfig()
	creds := auth.NewCredentialStore(store, cfg)
	auther := auth.NewAuthenticator(creds, cfg)

	return auther, creds, store
}

func seedUser(t *testing.T, creds *auth.CredentialStore, email, password string, role auth.UserRole) *auth.User {
	t.Helper()

	user, err := creds.Create(context.Background(), email, password, auth.CreateProfile{
		FirstName: "Test",
		LastName:  "User",
	}, role)
	require.NoError(t, err)

	return user
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a token and summary", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		user := seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.NotEmpty(t, result.Token)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, "parent@example.com", result.User.Email)
		assert.Equal(t, "Test", result.User.FirstName)
	})

	t.Run("wrong password fails with invalid credentials", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "nope")
		assert.Nil(t, result)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("login emits activity events", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		user := seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		sink := &capturingSink{}
		auther.WithActivitySink(sink)

		_, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)

		_, err = auther.Login(ctx, "parent@example.com", "nope")
		require.Error(t, err)

		require.Len(t, sink.events, 2)

		success := sink.events[0]
		assert.Equal(t, auth.ActivityEventLoginSuccess, success.EventType)
		assert.Equal(t, user.ID.String(), success.UserID)
		assert.Equal(t, user.ID.String(), success.Actor.ID)
		assert.False(t, success.OccurredAt.IsZero())

		failure := sink.events[1]
		assert.Equal(t, auth.ActivityEventLoginFailure, failure.EventType)
		assert.Empty(t, failure.UserID)
	})
}

func TestAuther_CurrentIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves the account behind the token", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		user := seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)

		summary, err := auther.CurrentIdentity(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, summary.ID)
		assert.Equal(t, user.Email, summary.Email)
	})

	t.Run("summary reflects flag changes made after issuance", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		user := seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)

		summary, err := auther.CurrentIdentity(ctx, result.Token)
		require.NoError(t, err)
		require.False(t, summary.IsPremium)

		require.NoError(t, creds.SetPremium(ctx, user.ID, true))

		summary, err = auther.CurrentIdentity(ctx, result.Token)
		require.NoError(t, err)
		assert.True(t, summary.IsPremium)
	})

	t.Run("empty token is unauthenticated", func(t *testing.T) {
		auther, _, _ := newTestAuther(t)

		_, err := auther.CurrentIdentity(ctx, "")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("garbage token is unauthenticated", func(t *testing.T) {
		auther, _, _ := newTestAuther(t)

		_, err := auther.CurrentIdentity(ctx, "not.a.token")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("reset token is not a session token", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		resetToken, err := auther.TokenService().IssueReset("parent@example.com")
		require.NoError(t, err)

		_, err = auther.CurrentIdentity(ctx, resetToken)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("token for a removed account is unauthenticated", func(t *testing.T) {
		auther, creds, store := newTestAuther(t)
		user := seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)

		store.remove(user.ID)

		_, err = auther.CurrentIdentity(ctx, result.Token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}

func TestAuther_RequireAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("allow listed email holds administrator authority", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		admin := seedUser(t, creds, "marine.alves@ecoledesgenies.com", "secret-pass-123", auth.RoleParent)
		require.True(t, admin.IsAdmin)

		result, err := auther.Login(ctx, "marine.alves@ecoledesgenies.com", "secret-pass-123")
		require.NoError(t, err)

		summary, err := auther.RequireAdmin(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, summary.ID)
		assert.True(t, summary.IsAdmin)
	})

	t.Run("regular account is forbidden", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)

		_, err = auther.RequireAdmin(ctx, result.Token)
		assert.ErrorIs(t, err, auth.ErrForbidden)
	})

	t.Run("authority is read from the store, not the token", func(t *testing.T) {
		auther, creds, store := newTestAuther(t)
		user := seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)

		_, err = auther.RequireAdmin(ctx, result.Token)
		require.ErrorIs(t, err, auth.ErrForbidden)

		// promote after the session was issued; the same token now passes
		store.setAdmin(user.ID, true)

		summary, err := auther.RequireAdmin(ctx, result.Token)
		require.NoError(t, err)
		assert.True(t, summary.IsAdmin)

		// and demotion takes effect immediately too
		store.setAdmin(user.ID, false)

		_, err = auther.RequireAdmin(ctx, result.Token)
		assert.ErrorIs(t, err, auth.ErrForbidden)
	})

	t.Run("missing token is unauthenticated before authorization", func(t *testing.T) {
		auther, _, _ := newTestAuther(t)

		_, err := auther.RequireAdmin(ctx, "")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}

func TestAuther_ResolveSheetFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("filter follows the live account tier", func(t *testing.T) {
		auther, creds, _ := newTestAuther(t)
		user := seedUser(t, creds, "parent@example.com", "secret-pass-123", auth.RoleParent)

		result, err := auther.Login(ctx, "parent@example.com", "secret-pass-123")
		require.NoError(t, err)

		filter, err := auther.ResolveSheetFilter(ctx, result.Token, "CP", "mathématiques")
		require.NoError(t, err)
		assert.True(t, filter.ExcludePremium)
		assert.True(t, filter.ExcludeTeacherOnly)
		assert.Equal(t, "CP", filter.Level)
		assert.Equal(t, "mathématiques", filter.Subject)

		// an upgrade widens what the same session may see
		require.NoError(t, creds.SetPremium(ctx, user.ID, true))

		filter, err = auther.ResolveSheetFilter(ctx, result.Token, "", "")
		require.NoError(t, err)
		assert.False(t, filter.ExcludePremium)
		assert.True(t, filter.ExcludeTeacherOnly)
	})

	t.Run("anonymous callers get no filter", func(t *testing.T) {
		auther, _, _ := newTestAuther(t)

		_, err := auther.ResolveSheetFilter(ctx, "", "CP", "")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}

func TestAuther_TokenRoundTrip(t *testing.T) {
	auther, creds, _ := newTestAuther(t)
	user := seedUser(t, creds, "teacher@example.com", "secret-pass-123", auth.RoleTeacher)

	result, err := auther.Login(context.Background(), "teacher@example.com", "secret-pass-123")
	require.NoError(t, err)

	claims, err := auther.TokenService().Validate(result.Token, auth.PurposeSession)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, user.Email, claims.UserEmail())
	assert.Equal(t, string(auth.RoleTeacher), claims.Role())
}
