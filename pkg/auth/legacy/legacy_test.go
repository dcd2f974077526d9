package legacy

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec("test-session-secret", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestSealAndOpenRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now().UTC()
	userID := uuid.New()

	value, err := codec.Seal(now, userID, "user@example.com", enums.UserRoleUser)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	claims, err := codec.Open(now.Add(time.Hour), value)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id mismatch")
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email mismatch: %s", claims.Email)
	}
	if claims.Role != enums.UserRoleUser {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
}

func TestOpenRejectsExpired(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now().UTC()

	value, err := codec.Seal(now, uuid.New(), "user@example.com", enums.UserRoleUser)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := codec.Open(now.Add(8*24*time.Hour), value); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestOpenRejectsTamperAndGarbage(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now().UTC()

	value, err := codec.Seal(now, uuid.New(), "user@example.com", enums.UserRoleAdmin)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	tampered := value[:len(value)-2] + "AA"
	if _, err := codec.Open(now, tampered); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected tampered value to fail, got %v", err)
	}
	if _, err := codec.Open(now, "not-base64!!"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected garbage to fail, got %v", err)
	}
	if _, err := codec.Open(now, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected empty value to fail, got %v", err)
	}
}

func TestOpenRejectsOtherSecret(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec("different-secret", time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	now := time.Now().UTC()

	value, err := codec.Seal(now, uuid.New(), "user@example.com", enums.UserRoleUser)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := other.Open(now, value); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected cross-secret open to fail, got %v", err)
	}
}
