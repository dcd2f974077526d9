package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/api/validators"
	"github.com/homegoods-vn/homegoods-backend/internal/lockout"
	pkgauth "github.com/homegoods-vn/homegoods-backend/pkg/auth"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/legacy"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/session"
	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	"github.com/homegoods-vn/homegoods-backend/pkg/db/models"
	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/logger"
	"github.com/homegoods-vn/homegoods-backend/pkg/security"
)

const invalidCredentials = "invalid credentials"

// Service defines the authentication lifecycle exposed to controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Register(ctx context.Context, req RegisterRequest) (*UserClaims, error)
	Refresh(ctx context.Context, req RefreshRequest) (*Session, error)
	Logout(ctx context.Context, accessID string) error
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type failureTracker interface {
	Status(ctx context.Context, email string) (lockout.Status, error)
	RecordFailure(ctx context.Context, email string) (lockout.Status, error)
	Clear(ctx context.Context, email string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	users    userStore
	tracker  failureTracker
	sessions sessionManager
	codec    *legacy.Codec
	cfg      *config.Config
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build the auth service.
type ServiceParams struct {
	Users    userStore
	Tracker  failureTracker
	Sessions sessionManager
	Codec    *legacy.Codec
	Config   *config.Config
	Logger   *logger.Logger
}

// NewService constructs the authentication service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("failure tracker is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Codec == nil {
		return nil, fmt.Errorf("legacy codec is required")
	}
	if params.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &service{
		users:    params.Users,
		tracker:  params.Tracker,
		sessions: params.Sessions,
		codec:    params.Codec,
		cfg:      params.Config,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Login verifies the credential pair behind the lockout gate and mints a full
// credential set on success. Unknown emails and bad passwords share one
// generic message.
func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	email := validators.NormalizeEmail(req.Email)
	password := strings.TrimSpace(req.Password)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	status, err := s.tracker.Status(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check lockout")
	}
	if status.Locked {
		return nil, s.lockedError(status)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if _, rerr := s.tracker.RecordFailure(ctx, email); rerr != nil && s.logg != nil {
				s.logg.Error(ctx, "lockout.record_failure", rerr)
			}
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentials)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}

	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account disabled")
	}

	ok, err := s.verifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		after, rerr := s.tracker.RecordFailure(ctx, email)
		if rerr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, rerr, "record failed attempt")
		}
		if after.Locked {
			return nil, s.lockedError(after)
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentials)
	}

	if err := s.tracker.Clear(ctx, email); err != nil && s.logg != nil {
		s.logg.Error(ctx, "lockout.clear", err)
	}
	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil && s.logg != nil {
		s.logg.Error(ctx, "users.update_last_login", err)
	}

	return s.mint(ctx, user, now)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*UserClaims, error) {
	email := validators.NormalizeEmail(req.Email)

	hash, err := security.HashPassword(req.Password, s.cfg.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  validators.SanitizeString(req.DisplayName, 120),
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}

	claims := claimsFor(user)
	return &claims, nil
}

// Refresh rotates the refresh token and reissues the full credential set. The
// presented access token may be expired; its signature and session id must
// still check out.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*Session, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.cfg.JWT, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token has no session")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	now := s.now()
	accessToken, err := pkgauth.MintAccessToken(s.cfg.JWT, now, pkgauth.AccessTokenPayload{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	legacyCookie, err := s.codec.Seal(now, claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal legacy session")
	}

	return &Session{
		AccessToken: accessToken,
		User: UserClaims{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role.String(),
		},
		RefreshToken: newRefresh,
		LegacyCookie: legacyCookie,
		RefreshTTL:   s.cfg.JWT.RefreshTokenTTL(),
		LegacyTTL:    s.cfg.Session.TTL(),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) mint(ctx context.Context, user *models.User, now time.Time) (*Session, error) {
	accessID := session.NewAccessID()

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.cfg.JWT, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	legacyCookie, err := s.codec.Seal(now, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal legacy session")
	}

	return &Session{
		AccessToken:  accessToken,
		User:         claimsFor(user),
		RefreshToken: refreshToken,
		LegacyCookie: legacyCookie,
		RefreshTTL:   s.cfg.JWT.RefreshTokenTTL(),
		LegacyTTL:    s.cfg.Session.TTL(),
	}, nil
}

// verifyPassword prefers real hashes; a plain-text row only matches outside
// production, for legacy rows that predate hashing.
func (s *service) verifyPassword(password, stored string) (bool, error) {
	if security.LooksHashed(stored) {
		return security.VerifyPassword(password, stored)
	}
	if s.cfg.App.IsProd() {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1, nil
}

func (s *service) lockedError(status lockout.Status) *pkgerrors.Error {
	minutes := int(math.Ceil(status.RetryAfter(s.now()).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return pkgerrors.New(pkgerrors.CodeLocked,
		fmt.Sprintf("account locked, try again in %d minutes", minutes))
}

func claimsFor(user *models.User) UserClaims {
	return UserClaims{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role.String(),
	}
}
