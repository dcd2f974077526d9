// Package legacy implements the opaque cookie session kept alive for clients
// that have not migrated to bearer tokens. The cookie value is an AES-GCM
// sealed JSON claims blob; verification fails closed.
package legacy

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

// ErrInvalidSession is returned for any cookie value that cannot be opened,
// decoded, or is past its expiry.
var ErrInvalidSession = errors.New("invalid legacy session")

// Claims is the payload sealed into the legacy session cookie.
type Claims struct {
	UserID    uuid.UUID      `json:"user_id"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	ExpiresAt int64          `json:"exp"`
}

// Codec seals and opens legacy session values with a derived AES-256 key.
type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec derives the sealing key from the configured session secret.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	key := sha256.Sum256([]byte(secret))
	return &Codec{key: key[:], ttl: ttl}, nil
}

// Seal produces the cookie value for the provided identity.
func (c *Codec) Seal(now time.Time, userID uuid.UUID, email string, role enums.UserRole) (string, error) {
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		ExpiresAt: now.Add(c.ttl).Unix(),
	}
	plain, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open validates and decodes a cookie value. Any failure, including expiry,
// yields ErrInvalidSession.
func (c *Codec) Open(now time.Time, value string) (*Claims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidSession
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, ErrInvalidSession
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if len(raw) < gcm.NonceSize() {
		return nil, ErrInvalidSession
	}

	plain, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrInvalidSession
	}

	var claims Claims
	if err := json.Unmarshal(plain, &claims); err != nil {
		return nil, ErrInvalidSession
	}
	if claims.ExpiresAt <= now.Unix() {
		return nil, ErrInvalidSession
	}
	if !claims.Role.IsValid() {
		return nil, ErrInvalidSession
	}
	return &claims, nil
}
