package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/homegoods-vn/homegoods-backend/api/responses"
	pkgAuth "github.com/homegoods-vn/homegoods-backend/pkg/auth"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/legacy"
	"github.com/homegoods-vn/homegoods-backend/pkg/auth/session"
	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/logger"
)

// LegacySessionCookie is the pre-migration cookie still honored while older
// clients refresh their credentials.
const LegacySessionCookie = "session"

// Auth authenticates the request and seeds the context with the caller's
// identity. A bearer access token is checked first; when no Authorization
// header is present the legacy session cookie is tried. An invalid credential
// on either path fails closed with 401 rather than falling through.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, codec *legacy.Codec, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw != "" {
				authenticateBearer(cfg, verifier, logg, next, w, r, raw)
				return
			}

			if codec != nil {
				if cookie, err := r.Cookie(LegacySessionCookie); err == nil && cookie.Value != "" {
					authenticateLegacy(codec, logg, next, w, r, cookie.Value)
					return
				}
			}

			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		})
	}
}

func authenticateBearer(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger, next http.Handler, w http.ResponseWriter, r *http.Request, raw string) {
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
		return
	}

	if claims.ID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
		return
	}

	if verifier != nil {
		ok, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
			return
		}
	}

	serve(logg, next, w, r, claims.UserID.String(), claims.Email, string(claims.Role))
}

func authenticateLegacy(codec *legacy.Codec, logg *logger.Logger, next http.Handler, w http.ResponseWriter, r *http.Request, value string) {
	claims, err := codec.Open(time.Now(), value)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session"))
		return
	}
	serve(logg, next, w, r, claims.UserID.String(), claims.Email, string(claims.Role))
}

func serve(logg *logger.Logger, next http.Handler, w http.ResponseWriter, r *http.Request, userID, email, role string) {
	ctx := WithIdentity(r.Context(), userID, email, role)
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id":    userID,
			"actor_role": role,
		})
	}
	next.ServeHTTP(w, r.WithContext(ctx))
}
