package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/internal/auth"
	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
)

type stubAuthService struct {
	session   *auth.Session
	claims    *auth.UserClaims
	err       error
	refreshed *auth.RefreshRequest
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	return s.session, s.err
}

func (s stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.UserClaims, error) {
	return s.claims, s.err
}

func (s stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.Session, error) {
	if s.refreshed != nil {
		*s.refreshed = req
	}
	return s.session, s.err
}

func (s stubAuthService) Logout(ctx context.Context, accessID string) error {
	return s.err
}

func devConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "dev"}}
}

func cookieByName(resp *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthLoginSetsCookies(t *testing.T) {
	session := &auth.Session{
		AccessToken:  "token",
		User:         auth.UserClaims{ID: uuid.New(), Email: "shopper@example.com", Role: "USER"},
		RefreshToken: "refresh-opaque",
		LegacyCookie: "sealed-session",
		RefreshTTL:   30 * 24 * time.Hour,
		LegacyTTL:    7 * 24 * time.Hour,
	}
	handler := AuthLogin(stubAuthService{session: session}, devConfig(), nil)

	body := `{"email":"shopper@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	refresh := cookieByName(resp, RefreshTokenCookie)
	if refresh == nil || refresh.Value != "refresh-opaque" {
		t.Fatalf("refresh cookie not set: %+v", refresh)
	}
	if !refresh.HttpOnly {
		t.Fatal("refresh cookie must be httpOnly")
	}
	legacy := cookieByName(resp, "session")
	if legacy == nil || legacy.Value != "sealed-session" {
		t.Fatalf("legacy cookie not set: %+v", legacy)
	}

	var envelope struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "token" {
		t.Fatalf("unexpected access token: %q", envelope.Data.AccessToken)
	}
	if envelope.Data.RefreshToken != "" {
		t.Fatal("refresh token must not appear in the body")
	}
}

func TestAuthLoginRejectsBadBody(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, devConfig(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginLockedAccount(t *testing.T) {
	handler := AuthLogin(stubAuthService{err: pkgerrors.New(pkgerrors.CodeLocked, "account locked, try again in 30 minutes")}, devConfig(), nil)
	body := `{"email":"shopper@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusLocked {
		t.Fatalf("expected 423 got %d", resp.Code)
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	claims := &auth.UserClaims{ID: uuid.New(), Email: "new@example.com", Role: "USER"}
	handler := AuthRegister(stubAuthService{claims: claims}, nil)
	body := `{"email":"new@example.com","password":"longenough1","display_name":"New Shopper"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestAuthRefreshBodylessUsesCookie(t *testing.T) {
	session := &auth.Session{
		AccessToken:  "rotated",
		RefreshToken: "rotated-refresh",
		RefreshTTL:   30 * 24 * time.Hour,
	}
	var got auth.RefreshRequest
	handler := AuthRefresh(stubAuthService{session: session, refreshed: &got}, devConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer stale-access")
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "cookie-refresh"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.RefreshToken != "cookie-refresh" {
		t.Fatalf("expected cookie refresh token, got %q", got.RefreshToken)
	}
	if got.AccessToken != "stale-access" {
		t.Fatalf("expected bearer access token, got %q", got.AccessToken)
	}
}

func TestAuthRefreshMissingToken(t *testing.T) {
	handler := AuthRefresh(stubAuthService{}, devConfig(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
