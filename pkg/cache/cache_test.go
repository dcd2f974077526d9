package cache

import (
	"context"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockRedis struct {
	mu   sync.Mutex
	data map[string]string
	fail map[string]error
}

func newMockRedis() *mockRedis {
	return &mockRedis{data: make(map[string]string), fail: make(map[string]error)}
}

func (m *mockRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if err := m.fail[key]; err != nil {
			return err
		}
		delete(m.data, key)
	}
	return nil
}

func (m *mockRedis) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *mockRedis) CacheKey(parts ...string) string {
	return "hg:cache:" + strings.Join(parts, ":")
}

type listingPage struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

func TestGetMissThenHit(t *testing.T) {
	mock := newMockRedis()
	store := &Store{store: mock}
	ctx := context.Background()
	key := store.Key("products", "page1")

	var page listingPage
	ok, err := store.Get(ctx, key, &page)
	if err != nil {
		t.Fatalf("get on empty cache: %v", err)
	}
	if ok {
		t.Fatal("expected a miss on empty cache")
	}

	want := listingPage{Name: "ceramic-bowls", Total: 42}
	if err := store.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	ok, err = store.Get(ctx, key, &page)
	if err != nil {
		t.Fatalf("get after set: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after set")
	}
	if page != want {
		t.Fatalf("got %+v, want %+v", page, want)
	}
}

func TestGetCorruptPayload(t *testing.T) {
	mock := newMockRedis()
	store := &Store{store: mock}
	key := store.Key("products", "page1")
	mock.data[key] = "{not json"

	var page listingPage
	if _, err := store.Get(context.Background(), key, &page); err == nil {
		t.Fatal("expected decode error for corrupt payload")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	mock := newMockRedis()
	store := &Store{store: mock}
	ctx := context.Background()

	for _, key := range []string{
		store.Key("products", "page1"),
		store.Key("products", "page2"),
		store.Key("stats", "daily"),
	} {
		if err := store.Set(ctx, key, listingPage{}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	if err := store.InvalidatePrefix(ctx, "products"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if _, ok := mock.data[store.Key("products", "page1")]; ok {
		t.Fatal("products page1 should be gone")
	}
	if _, ok := mock.data[store.Key("products", "page2")]; ok {
		t.Fatal("products page2 should be gone")
	}
	if _, ok := mock.data[store.Key("stats", "daily")]; !ok {
		t.Fatal("stats entry should survive a products invalidation")
	}
}
