package session

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/AntonAveryan/careermate/backend"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/localstore"
)

// Manager acquires, refreshes, caches and invalidates the two-token
// credential pair. It is safe for concurrent use: refreshes are serialized
// so two callers never race the same stale refresh token, and identity
// lookups run at most one at a time.
type Manager struct {
	store  localstore.Store
	api    *backend.Client
	logger zerolog.Logger

	refreshLock sync.Mutex // serializes refresh against the backend

	identityLock sync.Mutex // serializes identity lookups, guards the cache
	identity     *Identity  // process-local cache, never persisted
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a session Manager with its dependencies injected; there are
// no package-level singletons.
func New(store localstore.Store, api *backend.Client, options ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[session.New] store is required")
	}
	if api == nil {
		return nil, errors.New("[session.New] backend client is required")
	}
	m := &Manager{
		store:  store,
		api:    api,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Register creates an account and, on success, immediately signs in.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "[Register] username and password are required")
	}

	payload := map[string]string{"username": username, "password": password}
	if err := m.api.PostJSON(ctx, backend.RouteRegister, "", payload, nil); err != nil {
		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) {
			return errors.Wrap(err, "[Register]")
		}
		if apiErr.Status == http.StatusConflict || strings.Contains(apiErr.Detail, "already registered") {
			return apperrors.Wrapf(apperrors.ErrCredentialConflict, "[Register] %s", apiErr.Detail)
		}
		return apperrors.Wrapf(apperrors.ErrValidation, "[Register] %s", apiErr.Detail)
	}

	return m.Login(ctx, username, password)
}

// Login exchanges credentials for a token pair. The token endpoint takes
// form-encoded data, not JSON. On success both tokens are stored and any
// cached identity is dropped so the next lookup re-fetches.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return apperrors.Wrapf(apperrors.ErrValidation, "[Login] username and password are required")
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var pair TokenPair
	if err := m.api.PostForm(ctx, backend.RouteLogin, form, &pair); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return apperrors.Wrapf(apperrors.ErrAuth, "[Login] %s", apiErr.Detail)
		}
		return errors.Wrap(err, "[Login]")
	}

	if err := m.storeTokens(pair); err != nil {
		return err
	}
	m.invalidateIdentity()
	m.logger.Info().Str("username", username).Msg("signed in")
	return nil
}

// Refresh exchanges the stored refresh token for a new pair. A failed
// refresh is irrecoverable: both tokens are deleted and the session drops
// back to anonymous.
func (m *Manager) Refresh(ctx context.Context) error {
	err := m.refresh(ctx)
	m.invalidateIdentity()
	return err
}

func (m *Manager) refresh(ctx context.Context) error {
	m.refreshLock.Lock()
	defer m.refreshLock.Unlock()

	refreshToken, ok, err := m.store.Get(localstore.KeyRefreshToken)
	if err != nil {
		return errors.Wrap(err, "[Refresh] read store")
	}
	if !ok || refreshToken == "" {
		return apperrors.Wrapf(apperrors.ErrSessionExpired, "[Refresh] no refresh token")
	}

	var pair TokenPair
	err = m.api.PostJSON(ctx, backend.RouteRefresh, "", map[string]string{"refresh_token": refreshToken}, &pair)
	if err != nil {
		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) {
			return errors.Wrap(err, "[Refresh]")
		}
		m.clearTokens()
		return apperrors.Wrapf(apperrors.ErrSessionExpired, "[Refresh] %s", apiErr.Detail)
	}

	return m.storeTokens(pair)
}

// Identity returns the current user, fetching it from the backend on a
// cold cache. A 401 triggers exactly one refresh and one retried lookup,
// tracked with an explicit attempt counter; there is no loop. Any other
// backend failure reports unauthenticated.
func (m *Manager) Identity(ctx context.Context) (*Identity, error) {
	m.identityLock.Lock()
	defer m.identityLock.Unlock()

	if m.identity != nil {
		return m.identity, nil
	}

	token := m.AccessToken()
	if token == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[Identity] no access token")
	}

	for attempt := 0; attempt < 2; attempt++ {
		var ident Identity
		err := m.api.GetJSON(ctx, backend.RouteMe, token, nil, &ident)
		if err == nil {
			m.identity = &ident
			return m.identity, nil
		}

		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) {
			return nil, errors.Wrap(err, "[Identity]")
		}
		if apiErr.Status != http.StatusUnauthorized || attempt > 0 {
			m.identity = nil
			return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[Identity] %s", apiErr.Detail)
		}

		// Expired access token: one refresh, one retry.
		if err := m.refresh(ctx); err != nil {
			m.identity = nil
			return nil, err
		}
		token = m.AccessToken()
	}

	m.identity = nil
	return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[Identity] retry exhausted")
}

// Logout best-effort notifies the backend (a failed notification is
// logged, not surfaced), then unconditionally drops the tokens and cached
// identity.
func (m *Manager) Logout(ctx context.Context) {
	refreshToken, ok, err := m.store.Get(localstore.KeyRefreshToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("token store read failed during logout")
	}
	if ok && refreshToken != "" {
		payload := map[string]string{"refresh_token": refreshToken}
		if err := m.api.PostJSON(ctx, backend.RouteLogout, "", payload, nil); err != nil {
			m.logger.Warn().Err(err).Msg("logout notification failed")
		}
	}

	m.clearTokens()
	m.invalidateIdentity()
	m.logger.Info().Msg("signed out")
}

// AccessToken returns the stored access token, or "" when anonymous.
func (m *Manager) AccessToken() string {
	token, _, err := m.store.Get(localstore.KeyAccessToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("token store read failed")
		return ""
	}
	return token
}

// State reports Anonymous or Authenticated from token presence alone. A
// present token is assumed valid until the backend says otherwise.
func (m *Manager) State() State {
	if m.AccessToken() == "" {
		return StateAnonymous
	}
	return StateAuthenticated
}

// TokenInfo decodes the stored access token without verifying it, for
// display purposes only.
func (m *Manager) TokenInfo() (*TokenInfo, error) {
	raw := m.AccessToken()
	if raw == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthenticated, "[TokenInfo] no access token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, "[TokenInfo] parse access token")
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

func (m *Manager) storeTokens(pair TokenPair) error {
	if err := m.store.Set(localstore.KeyAccessToken, pair.AccessToken); err != nil {
		return errors.Wrap(err, "[storeTokens] access token")
	}
	if err := m.store.Set(localstore.KeyRefreshToken, pair.RefreshToken); err != nil {
		return errors.Wrap(err, "[storeTokens] refresh token")
	}
	return nil
}

func (m *Manager) clearTokens() {
	if err := m.store.Delete(localstore.KeyAccessToken); err != nil {
		m.logger.Warn().Err(err).Msg("failed to delete access token")
	}
	if err := m.store.Delete(localstore.KeyRefreshToken); err != nil {
		m.logger.Warn().Err(err).Msg("failed to delete refresh token")
	}
}

func (m *Manager) invalidateIdentity() {
	m.identityLock.Lock()
	defer m.identityLock.Unlock()
	m.identity = nil
}
