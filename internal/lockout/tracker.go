package lockout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/homegoods-vn/homegoods-backend/pkg/config"
	redisclient "github.com/homegoods-vn/homegoods-backend/pkg/redis"
)

type lockoutStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type lockoutKeyer interface {
	LockoutKey(emailHash string) string
}

// record is the JSON blob stored per email. Failures outside the window reset
// the count; hitting the max sets lock_until.
type record struct {
	Count       int        `json:"count"`
	LastAttempt time.Time  `json:"last_attempt"`
	LockUntil   *time.Time `json:"lock_until,omitempty"`
}

// Status reports the lock state for one account.
type Status struct {
	Locked   bool
	Until    time.Time
	Failures int
}

// RetryAfter returns the remaining lock duration, zero when unlocked.
func (s Status) RetryAfter(now time.Time) time.Duration {
	if !s.Locked {
		return 0
	}
	remaining := s.Until.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tracker counts failed logins per account in Redis and locks the account
// after repeated failures. State lives outside the process so every instance
// sees the same counters.
type Tracker struct {
	store lockoutStore
	keyer lockoutKeyer
	cfg   config.LockoutConfig
	now   func() time.Time
}

// NewTracker wires the tracker against the shared Redis client.
func NewTracker(client *redisclient.Client, cfg config.LockoutConfig) (*Tracker, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.MaxFailures <= 0 {
		return nil, fmt.Errorf("lockout max failures must be positive")
	}
	if cfg.Window <= 0 || cfg.Cooldown <= 0 {
		return nil, fmt.Errorf("lockout window and cooldown must be positive")
	}
	return &Tracker{store: client, keyer: client, cfg: cfg, now: time.Now}, nil
}

// RecordFailure registers one failed login for email and returns the
// resulting state. A failure after the window restarts the count at one; the
// failure that reaches the maximum sets the lock. An already locked account
// is left untouched.
func (t *Tracker) RecordFailure(ctx context.Context, email string) (Status, error) {
	now := t.now()
	key := t.key(email)

	rec, err := t.load(ctx, key)
	if err != nil {
		return Status{}, err
	}

	if rec.LockUntil != nil && rec.LockUntil.After(now) {
		return Status{Locked: true, Until: *rec.LockUntil, Failures: rec.Count}, nil
	}

	if rec.Count == 0 || now.Sub(rec.LastAttempt) > t.cfg.Window {
		rec.Count = 1
	} else {
		rec.Count++
	}
	rec.LastAttempt = now
	rec.LockUntil = nil

	if rec.Count >= t.cfg.MaxFailures {
		until := now.Add(t.cfg.Cooldown)
		rec.LockUntil = &until
	}

	if err := t.save(ctx, key, rec); err != nil {
		return Status{}, err
	}

	status := Status{Failures: rec.Count}
	if rec.LockUntil != nil {
		status.Locked = true
		status.Until = *rec.LockUntil
	}
	return status, nil
}

// Status reports whether email is currently locked. An expired lock clears
// the stored record so the next attempt starts fresh.
func (t *Tracker) Status(ctx context.Context, email string) (Status, error) {
	now := t.now()
	key := t.key(email)

	rec, err := t.load(ctx, key)
	if err != nil {
		return Status{}, err
	}
	if rec.Count == 0 {
		return Status{}, nil
	}

	if rec.LockUntil != nil {
		if rec.LockUntil.After(now) {
			return Status{Locked: true, Until: *rec.LockUntil, Failures: rec.Count}, nil
		}
		if err := t.store.Del(ctx, key); err != nil {
			return Status{}, fmt.Errorf("clear expired lock: %w", err)
		}
		return Status{}, nil
	}

	return Status{Failures: rec.Count}, nil
}

// Clear removes the failure record after a successful login.
func (t *Tracker) Clear(ctx context.Context, email string) error {
	if err := t.store.Del(ctx, t.key(email)); err != nil {
		return fmt.Errorf("clear lockout record: %w", err)
	}
	return nil
}

func (t *Tracker) key(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return t.keyer.LockoutKey(hex.EncodeToString(sum[:]))
}

func (t *Tracker) load(ctx context.Context, key string) (record, error) {
	raw, err := t.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return record{}, nil
		}
		return record{}, fmt.Errorf("load lockout record: %w", err)
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record{}, fmt.Errorf("decode lockout record: %w", err)
	}
	return rec, nil
}

func (t *Tracker) save(ctx context.Context, key string, rec record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode lockout record: %w", err)
	}
	ttl := t.cfg.Window
	if rec.LockUntil != nil && t.cfg.Cooldown > ttl {
		ttl = t.cfg.Cooldown
	}
	if err := t.store.Set(ctx, key, string(payload), ttl); err != nil {
		return fmt.Errorf("save lockout record: %w", err)
	}
	return nil
}
