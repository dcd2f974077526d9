package security

import (
	"strings"
	"testing"

	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestHashAndVerifyArgon2id(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", testPasswordConfig())
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash prefix: %s", hash)
	}
	if !LooksHashed(hash) {
		t.Fatalf("argon2id hash should be recognized")
	}

	ok, err := VerifyPassword("s3cret-pass", hash)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch to fail")
	}
}

func TestVerifyBcryptHash(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("legacy-pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}
	hash := string(raw)
	if !LooksHashed(hash) {
		t.Fatalf("bcrypt hash should be recognized")
	}

	ok, err := VerifyPassword("legacy-pw", hash)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected bcrypt match")
	}

	ok, err = VerifyPassword("nope", hash)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ok {
		t.Fatalf("expected bcrypt mismatch to fail")
	}
}

func TestLooksHashedRejectsPlainText(t *testing.T) {
	if LooksHashed("password123") {
		t.Fatalf("plain text should not look hashed")
	}
	if LooksHashed("") {
		t.Fatalf("empty string should not look hashed")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("x", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}
