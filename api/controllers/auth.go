package controllers

import (
	"net/http"
	"strings"

	"github.com/homegoods-vn/homegoods-backend/api/middleware"
	"github.com/homegoods-vn/homegoods-backend/api/responses"
	"github.com/homegoods-vn/homegoods-backend/api/validators"
	"github.com/homegoods-vn/homegoods-backend/internal/auth"
	pkgAuth "github.com/homegoods-vn/homegoods-backend/pkg/auth"
	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/logger"
)

// RefreshTokenCookie carries the opaque refresh token between rotations.
const RefreshTokenCookie = "refreshToken"

func parseBearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

func setSessionCookies(w http.ResponseWriter, cfg *config.Config, session *auth.Session) {
	secure := cfg.App.IsProd()
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    session.RefreshToken,
		Path:     "/api/auth",
		MaxAge:   int(session.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	if session.LegacyCookie != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.LegacySessionCookie,
			Value:    session.LegacyCookie,
			Path:     "/",
			MaxAge:   int(session.LegacyTTL.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func clearSessionCookies(w http.ResponseWriter, cfg *config.Config) {
	secure := cfg.App.IsProd()
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.LegacySessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthLogin authenticates the credential pair and establishes a session. The
// refresh token and the legacy session cookie travel as httpOnly cookies; the
// body carries only the access token and the user snapshot.
func AuthLogin(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookies(w, cfg, session)
		responses.WriteSuccess(w, session)
	}
}

// AuthRegister creates a customer account. Registration does not log the
// account in; clients follow up with a login call.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, claims)
	}
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthRefresh rotates the refresh token and reissues the full credential set.
// The refresh token is accepted from the body or, failing that, the cookie set
// at login.
func AuthRefresh(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body refreshBody
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.RefreshToken == "" {
			if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
				body.RefreshToken = cookie.Value
			}
		}
		if body.RefreshToken == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing refresh token"))
			return
		}

		accessToken, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Refresh(r.Context(), auth.RefreshRequest{
			AccessToken:  accessToken,
			RefreshToken: body.RefreshToken,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookies(w, cfg, session)
		responses.WriteSuccess(w, session)
	}
}

// AuthLogout revokes the session behind the presented access token and clears
// the session cookies. An expired access token is still accepted so stale
// clients can log out cleanly.
func AuthLogout(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims, err := pkgAuth.ParseAccessTokenAllowExpired(cfg.JWT, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := svc.Logout(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookies(w, cfg)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
