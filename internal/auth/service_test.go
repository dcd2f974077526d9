package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/internal/lockout"
	pkgauth "github.com/homegoods-vn/homegoods-backend/pkg/auth"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/legacy"
	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/security"
)

type stubUserStore struct {
	users     map[string]*models.User
	lastLogin map[uuid.UUID]time.Time
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	store := &stubUserStore{users: map[string]*models.User{}, lastLogin: map[uuid.UUID]time.Time{}}
	for _, user := range users {
		store.users[user.Email] = user
	}
	return store
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserStore) Create(_ context.Context, user *models.User) error {
	if _, exists := s.users[user.Email]; exists {
		return duplicateKeyError()
	}
	user.ID = uuid.New()
	s.users[user.Email] = user
	return nil
}

func (s *stubUserStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

func duplicateKeyError() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

type fakeTracker struct {
	cfg      config.LockoutConfig
	now      func() time.Time
	failures map[string]int
	locked   map[string]time.Time
}

func newFakeTracker(cfg config.LockoutConfig, now func() time.Time) *fakeTracker {
	return &fakeTracker{cfg: cfg, now: now, failures: map[string]int{}, locked: map[string]time.Time{}}
}

func (f *fakeTracker) Status(_ context.Context, email string) (lockout.Status, error) {
	until, ok := f.locked[email]
	if ok && until.After(f.now()) {
		return lockout.Status{Locked: true, Until: until, Failures: f.failures[email]}, nil
	}
	return lockout.Status{Failures: f.failures[email]}, nil
}

func (f *fakeTracker) RecordFailure(ctx context.Context, email string) (lockout.Status, error) {
	f.failures[email]++
	if f.failures[email] >= f.cfg.MaxFailures {
		f.locked[email] = f.now().Add(f.cfg.Cooldown)
	}
	return f.Status(ctx, email)
}

func (f *fakeTracker) Clear(_ context.Context, email string) error {
	delete(f.failures, email)
	delete(f.locked, email)
	return nil
}

type fakeSessions struct {
	refresh map[string]string
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{refresh: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.refresh[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	current, ok := f.refresh[oldAccessID]
	if !ok || current != provided {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session not found")
	}
	delete(f.refresh, oldAccessID)
	newID := uuid.NewString()
	token, _ := f.Generate(ctx, newID)
	return newID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.refresh, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testConfig(env string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env, Port: "8080"},
		JWT: config.JWTConfig{
			Secret:                 "test-secret-test-secret-test-secret!",
			Issuer:                 "homegoods-test",
			ExpirationMinutes:      15,
			RefreshTokenTTLMinutes: 60 * 24 * 30,
		},
		Session: config.SessionConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			TTLMinutes: 60 * 24 * 7,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Lockout: config.LockoutConfig{MaxFailures: 5, Window: 15 * time.Minute, Cooldown: 30 * time.Minute},
	}
}

type testAuthEnv struct {
	svc     Service
	users   *stubUserStore
	tracker *fakeTracker
	session *fakeSessions
	cfg     *config.Config
	now     time.Time
}

func newAuthEnv(t *testing.T, env string, users ...*models.User) *testAuthEnv {
	t.Helper()
	cfg := testConfig(env)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	codec, err := legacy.NewCodec(cfg.Session.Secret, cfg.Session.TTL())
	require.NoError(t, err)

	store := newStubUserStore(users...)
	tracker := newFakeTracker(cfg.Lockout, func() time.Time { return now })
	sessions := newFakeSessions()

	svc, err := NewService(ServiceParams{
		Users:    store,
		Tracker:  tracker,
		Sessions: sessions,
		Codec:    codec,
		Config:   cfg,
	})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return now }

	return &testAuthEnv{svc: svc, users: store, tracker: tracker, session: sessions, cfg: cfg, now: now}
}

func hashedUser(t *testing.T, cfg *config.Config, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, cfg.Password)
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Chi Lan",
		Role:         enums.UserRoleUser,
		IsActive:     active,
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code, msgAndArgs ...any) *pkgerrors.Error {
	t.Helper()
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code(), msgAndArgs...)
	return appErr
}

func TestLoginSuccess(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	user := hashedUser(t, env.cfg, "lan@example.vn", "s3cret-pass", true)
	env.users.users[user.Email] = user

	sess, err := env.svc.Login(context.Background(), LoginRequest{Email: "  Lan@Example.VN ", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.NotEmpty(t, sess.LegacyCookie)
	assert.Equal(t, user.ID, sess.User.ID)
	assert.Equal(t, "USER", sess.User.Role)
	assert.Equal(t, env.now, env.users.lastLogin[user.ID])

	claims, err := pkgauth.ParseAccessToken(env.cfg.JWT, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEmpty(t, claims.ID, "access token carries the session id")
}

func TestLoginMissingFields(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)

	_, err := env.svc.Login(context.Background(), LoginRequest{Email: "", Password: "x"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = env.svc.Login(context.Background(), LoginRequest{Email: "a@b.vn", Password: ""})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestLoginTrimsPassword(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	user := hashedUser(t, env.cfg, "lan@example.vn", "s3cret-pass", true)
	env.users.users[user.Email] = user
	ctx := context.Background()

	_, err := env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: " s3cret-pass "})
	require.NoError(t, err)
	assert.Zero(t, env.tracker.failures["lan@example.vn"], "a stray space around a correct password is not a failed attempt")

	_, err = env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestLoginUnknownEmailGenericAndCounted(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)

	_, err := env.svc.Login(context.Background(), LoginRequest{Email: "ghost@example.vn", Password: "whatever"})
	appErr := requireCode(t, err, pkgerrors.CodeUnauthorized)
	assert.Equal(t, invalidCredentials, appErr.Message(), "does not reveal whether the email exists")
	assert.Equal(t, 1, env.tracker.failures["ghost@example.vn"])
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	user := hashedUser(t, env.cfg, "off@example.vn", "s3cret-pass", false)
	env.users.users[user.Email] = user

	_, err := env.svc.Login(context.Background(), LoginRequest{Email: "off@example.vn", Password: "s3cret-pass"})
	requireCode(t, err, pkgerrors.CodeForbidden)
	assert.Zero(t, env.tracker.failures["off@example.vn"], "disabled accounts do not count toward lockout")
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	user := hashedUser(t, env.cfg, "lan@example.vn", "s3cret-pass", true)
	env.users.users[user.Email] = user
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "wrong"})
		requireCode(t, err, pkgerrors.CodeUnauthorized)
	}

	_, err := env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "wrong"})
	appErr := requireCode(t, err, pkgerrors.CodeLocked)
	assert.Contains(t, appErr.Message(), "30 minutes")

	_, err = env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "s3cret-pass"})
	requireCode(t, err, pkgerrors.CodeLocked)
}

func TestLoginClearsFailuresOnSuccess(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	user := hashedUser(t, env.cfg, "lan@example.vn", "s3cret-pass", true)
	env.users.users[user.Email] = user
	ctx := context.Background()

	_, err := env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "wrong"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Zero(t, env.tracker.failures["lan@example.vn"])
}

func TestLoginPlaintextRowOnlyOutsideProduction(t *testing.T) {
	legacyUser := &models.User{
		ID:           uuid.New(),
		Email:        "old@example.vn",
		PasswordHash: "plain-text-password",
		DisplayName:  "Legacy",
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}

	dev := newAuthEnv(t, config.AppEnvDev, legacyUser)
	_, err := dev.svc.Login(context.Background(), LoginRequest{Email: "old@example.vn", Password: "plain-text-password"})
	require.NoError(t, err)

	prod := newAuthEnv(t, config.AppEnvProd, legacyUser)
	_, err = prod.svc.Login(context.Background(), LoginRequest{Email: "old@example.vn", Password: "plain-text-password"})
	requireCode(t, err, pkgerrors.CodeUnauthorized, "production never accepts a plain-text match")
}

func TestRegister(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	ctx := context.Background()

	claims, err := env.svc.Register(ctx, RegisterRequest{
		Email:       " New@Example.VN ",
		Password:    "s3cret-pass",
		DisplayName: "  Minh  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.vn", claims.Email)
	assert.Equal(t, "Minh", claims.DisplayName)
	assert.Equal(t, "USER", claims.Role)

	stored := env.users.users["new@example.vn"]
	require.NotNil(t, stored)
	assert.True(t, security.LooksHashed(stored.PasswordHash))
	assert.False(t, strings.Contains(stored.PasswordHash, "s3cret-pass"))

	_, err = env.svc.Register(ctx, RegisterRequest{Email: "new@example.vn", Password: "s3cret-pass", DisplayName: "Minh"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestRefreshRotatesSession(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	user := hashedUser(t, env.cfg, "lan@example.vn", "s3cret-pass", true)
	env.users.users[user.Email] = user
	ctx := context.Background()

	sess, err := env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "s3cret-pass"})
	require.NoError(t, err)

	renewed, err := env.svc.Refresh(ctx, RefreshRequest{AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, renewed.RefreshToken)
	assert.Equal(t, user.ID, renewed.User.ID)

	_, err = env.svc.Refresh(ctx, RefreshRequest{AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken})
	requireCode(t, err, pkgerrors.CodeUnauthorized, "old refresh token is single-use")
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)

	_, err := env.svc.Refresh(context.Background(), RefreshRequest{AccessToken: "not-a-jwt", RefreshToken: "x"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newAuthEnv(t, config.AppEnvProd)
	user := hashedUser(t, env.cfg, "lan@example.vn", "s3cret-pass", true)
	env.users.users[user.Email] = user
	ctx := context.Background()

	sess, err := env.svc.Login(ctx, LoginRequest{Email: "lan@example.vn", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(env.cfg.JWT, sess.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, claims.ID))
	assert.Contains(t, env.session.revoked, claims.ID)
}
