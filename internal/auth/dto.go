package auth

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest carries the credential pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RegisterRequest creates a customer account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=120"`
}

// RefreshRequest rotates the refresh token. The access token may be expired;
// only its signature and session id are used.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token"`
}

// UserClaims is the public identity snapshot returned alongside tokens.
type UserClaims struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}

// Session is a full credential set minted on login or refresh. Cookie values
// are set by the controller, not serialized in the response body.
type Session struct {
	AccessToken  string        `json:"access_token"`
	User         UserClaims    `json:"user"`
	RefreshToken string        `json:"-"`
	LegacyCookie string        `json:"-"`
	RefreshTTL   time.Duration `json:"-"`
	LegacyTTL    time.Duration `json:"-"`
}
