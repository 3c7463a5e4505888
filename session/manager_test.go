package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/AntonAveryan/careermate/backend"
	"github.com/AntonAveryan/careermate/internal/backendtest"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/localstore"
	"github.com/AntonAveryan/careermate/localstore/storefakes"
	"github.com/AntonAveryan/careermate/session"
)

type testFixture struct {
	backend *backendtest.Server
	store   *storefakes.FakeStore
	manager *session.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	srv := backendtest.New()
	t.Cleanup(srv.Close)

	store := storefakes.NewFakeStore()
	manager, err := session.New(store, backend.New(srv.URL))
	require.NoError(t, err)

	return &testFixture{backend: srv, store: store, manager: manager}
}

func TestRegisterThenLoginYieldsTokenPair(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.manager.Register(ctx, "alice", "secret"))

	snapshot := f.store.Snapshot()
	require.NotEmpty(t, snapshot[localstore.KeyAccessToken])
	require.NotEmpty(t, snapshot[localstore.KeyRefreshToken])
	require.Equal(t, session.StateAuthenticated, f.manager.State())
}

func TestRegisterConflict(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "secret")

	err := f.manager.Register(context.Background(), "alice", "other")
	require.ErrorIs(t, err, apperrors.ErrCredentialConflict)
	require.Equal(t, session.StateAnonymous, f.manager.State())
}

func TestLoginStoresExactTokenPair(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "secret")
	f.backend.SetNextTokens("A1", "R1")

	require.NoError(t, f.manager.Login(context.Background(), "alice", "secret"))

	require.Equal(t, map[string]string{
		localstore.KeyAccessToken:  "A1",
		localstore.KeyRefreshToken: "R1",
	}, f.store.Snapshot())
}

func TestLoginBadCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser("alice", "secret")

	err := f.manager.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, apperrors.ErrAuth)
	require.Contains(t, err.Error(), "Incorrect username or password")
	require.Empty(t, f.store.Snapshot())
}

func TestFailedRefreshClearsBothTokens(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set(localstore.KeyAccessToken, "stale-access"))
	require.NoError(t, f.store.Set(localstore.KeyRefreshToken, "bogus-refresh"))

	err := f.manager.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Empty(t, f.store.Snapshot())
	require.Equal(t, session.StateAnonymous, f.manager.State())
}

func TestRefreshRotatesPair(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.AddUser("alice", "secret")
	f.backend.SetNextTokens("A1", "R1")
	require.NoError(t, f.manager.Login(ctx, "alice", "secret"))

	require.NoError(t, f.manager.Refresh(ctx))

	snapshot := f.store.Snapshot()
	require.NotEqual(t, "A1", snapshot[localstore.KeyAccessToken])
	require.NotEqual(t, "R1", snapshot[localstore.KeyRefreshToken])
	require.NotEmpty(t, snapshot[localstore.KeyAccessToken])
}

func TestIdentityRefreshesOnceAfter401(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.AddUser("alice", "secret")
	f.backend.SetNextTokens("A1", "R1")
	require.NoError(t, f.manager.Login(ctx, "alice", "secret"))

	f.backend.ExpireAccess("A1")

	ident, err := f.manager.Identity(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", ident.Username)
	require.Equal(t, 1, f.backend.RefreshCalls)
	require.Equal(t, 2, f.backend.MeCalls)
}

func TestIdentityGivesUpWhenRefreshFails(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.AddUser("alice", "secret")
	f.backend.SetNextTokens("A1", "R1")
	require.NoError(t, f.manager.Login(ctx, "alice", "secret"))

	f.backend.ExpireAccess("A1")
	f.backend.RevokeRefresh("R1")

	_, err := f.manager.Identity(ctx)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)

	// Exactly one lookup and one refresh attempt, no retry loop.
	require.Equal(t, 1, f.backend.MeCalls)
	require.Equal(t, 1, f.backend.RefreshCalls)
	require.Equal(t, session.StateAnonymous, f.manager.State())
}

func TestIdentityIsCached(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.AddUser("alice", "secret")
	require.NoError(t, f.manager.Login(ctx, "alice", "secret"))

	first, err := f.manager.Identity(ctx)
	require.NoError(t, err)
	second, err := f.manager.Identity(ctx)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, f.backend.MeCalls)
}

func TestIdentityWithoutToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Identity(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	require.Equal(t, 0, f.backend.MeCalls)
}

func TestLogoutAlwaysDropsLocalState(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.AddUser("alice", "secret")
	require.NoError(t, f.manager.Login(ctx, "alice", "secret"))
	_, err := f.manager.Identity(ctx)
	require.NoError(t, err)

	f.manager.Logout(ctx)

	require.Empty(t, f.store.Snapshot())
	require.Equal(t, session.StateAnonymous, f.manager.State())
	_, err = f.manager.Identity(ctx)
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestLogoutSurvivesDeadBackend(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.AddUser("alice", "secret")
	require.NoError(t, f.manager.Login(ctx, "alice", "secret"))

	f.backend.Close()

	f.manager.Logout(ctx)
	require.Empty(t, f.store.Snapshot())
}

func TestTokenInfoDecodesClaims(t *testing.T) {
	f := setupTestFixture(t)

	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	require.NoError(t, f.store.Set(localstore.KeyAccessToken, signed))

	info, err := f.manager.TokenInfo()
	require.NoError(t, err)
	require.Equal(t, "alice", info.Subject)
	require.Equal(t, expiry.Unix(), info.ExpiresAt.Unix())
}

func TestTokenInfoAnonymous(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.TokenInfo()
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestValidationErrors(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.manager.Login(ctx, "", "secret"), apperrors.ErrValidation)
	require.ErrorIs(t, f.manager.Register(ctx, "alice", ""), apperrors.ErrValidation)
}
