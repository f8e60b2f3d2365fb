package cache

import (
	"context"
	"testing"
	"time"
)

// MockModelClient for testing
type MockModelClient struct {
	completion string
	err        error
	callCount  int
}

func (m *MockModelClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.callCount++
	if m.err != nil {
		return "", m.err
	}
	return m.completion, nil
}

func (m *MockModelClient) ModelName() string {
	return "test-model"
}

func TestNewCompletionCache(t *testing.T) {
	cache := NewCompletionCache(10*time.Minute, 100)

	if cache == nil {
		t.Fatal("expected cache but got nil")
	}
	if cache.ttl != 10*time.Minute {
		t.Errorf("expected TTL 10m, got %v", cache.ttl)
	}
	if cache.maxEntries != 100 {
		t.Errorf("expected max entries 100, got %d", cache.maxEntries)
	}
}

func TestNewCompletionCacheDefaults(t *testing.T) {
	cache := NewCompletionCache(0, 0)

	if cache.ttl != 15*time.Minute {
		t.Errorf("expected default TTL 15m, got %v", cache.ttl)
	}
	if cache.maxEntries != 256 {
		t.Errorf("expected default max entries 256, got %d", cache.maxEntries)
	}
}

func TestCompletionCacheSetAndGet(t *testing.T) {
	cache := NewCompletionCache(10*time.Minute, 100)

	_, found := cache.Get("test-model", 1500, "extract the profile")
	if found {
		t.Error("expected cache miss before set")
	}

	cache.Set("test-model", 1500, "extract the profile", `{"name": "test"}`)

	completion, found := cache.Get("test-model", 1500, "extract the profile")
	if !found {
		t.Fatal("expected cache hit after set")
	}
	if completion != `{"name": "test"}` {
		t.Errorf("unexpected completion: %s", completion)
	}

	// Different token limit is a different request
	_, found = cache.Get("test-model", 3500, "extract the profile")
	if found {
		t.Error("different token limit should miss")
	}
}

func TestCompletionCacheExpiration(t *testing.T) {
	cache := NewCompletionCache(100*time.Millisecond, 100)

	cache.Set("test-model", 100, "prompt", "completion")

	_, found := cache.Get("test-model", 100, "prompt")
	if !found {
		t.Error("expected cache hit immediately after set")
	}

	time.Sleep(150 * time.Millisecond)

	_, found = cache.Get("test-model", 100, "prompt")
	if found {
		t.Error("expected cache miss after expiration")
	}
}

func TestCompletionCacheStats(t *testing.T) {
	cache := NewCompletionCache(10*time.Minute, 100)

	stats := cache.Stats()
	if stats.TotalEntries != 0 {
		t.Errorf("expected 0 entries, got %d", stats.TotalEntries)
	}
	if stats.TotalHits != 0 {
		t.Errorf("expected 0 hits, got %d", stats.TotalHits)
	}

	cache.Set("test-model", 100, "first", "a")
	cache.Set("test-model", 100, "second", "b")

	cache.Get("test-model", 100, "first")
	cache.Get("test-model", 100, "first")

	stats = cache.Stats()
	if stats.TotalEntries != 2 {
		t.Errorf("expected 2 entries, got %d", stats.TotalEntries)
	}
	if stats.TotalHits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.TotalHits)
	}
}

func TestCompletionCacheClear(t *testing.T) {
	cache := NewCompletionCache(10*time.Minute, 100)

	cache.Set("test-model", 100, "first", "a")
	cache.Set("test-model", 100, "second", "b")

	cache.Clear()

	stats := cache.Stats()
	if stats.TotalEntries != 0 {
		t.Errorf("expected 0 entries after clear, got %d", stats.TotalEntries)
	}
}

func TestCompletionCacheEviction(t *testing.T) {
	cache := NewCompletionCache(10*time.Minute, 2)

	cache.Set("test-model", 100, "first", "a")
	cache.Set("test-model", 100, "second", "b")
	cache.Set("test-model", 100, "third", "c")

	stats := cache.Stats()
	if stats.TotalEntries != 2 {
		t.Errorf("expected 2 entries after eviction, got %d", stats.TotalEntries)
	}

	// The newest entry always survives
	if _, found := cache.Get("test-model", 100, "third"); !found {
		t.Error("newest entry should survive eviction")
	}
}

func TestCompletionCacheCleanupExpired(t *testing.T) {
	cache := NewCompletionCache(50*time.Millisecond, 100)

	cache.Set("test-model", 100, "first", "a")
	cache.Set("test-model", 100, "second", "b")

	time.Sleep(100 * time.Millisecond)

	removed := cache.CleanupExpired()
	if removed != 2 {
		t.Errorf("expected 2 expired entries removed, got %d", removed)
	}

	stats := cache.Stats()
	if stats.TotalEntries != 0 {
		t.Errorf("expected 0 entries after cleanup, got %d", stats.TotalEntries)
	}
}

func TestCompletionCacheKey(t *testing.T) {
	cache := NewCompletionCache(10*time.Minute, 100)

	key1 := cache.key("test-model", 1500, "extract the profile")
	key2 := cache.key("test-model", 1500, "extract the profile")
	if key1 != key2 {
		t.Errorf("same inputs should produce the same key, got %s vs %s", key1, key2)
	}

	key3 := cache.key("test-model", 1500, "a different prompt")
	if key1 == key3 {
		t.Errorf("different prompts should produce different keys, both %s", key1)
	}

	key4 := cache.key("other-model", 1500, "extract the profile")
	if key1 == key4 {
		t.Errorf("different models should produce different keys, both %s", key1)
	}

	if len(key1) > 20 {
		t.Errorf("expected a short key, got length %d", len(key1))
	}
}

func TestCachedModelClient(t *testing.T) {
	mock := &MockModelClient{completion: `{"name": "test"}`}
	cache := NewCompletionCache(10*time.Minute, 100)
	client := NewCachedModelClient(mock, cache)

	ctx := context.Background()

	first, err := client.Complete(ctx, "extract", 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.callCount != 1 {
		t.Errorf("expected 1 call to underlying client, got %d", mock.callCount)
	}

	second, err := client.Complete(ctx, "extract", 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.callCount != 1 {
		t.Errorf("cache hit should not call underlying client, got %d calls", mock.callCount)
	}
	if first != second {
		t.Errorf("expected identical completions, got %s vs %s", first, second)
	}

	if client.ModelName() != "test-model" {
		t.Errorf("unexpected model name: %s", client.ModelName())
	}
}

func TestCachedModelClientErrorNotCached(t *testing.T) {
	mock := &MockModelClient{err: context.DeadlineExceeded}
	cache := NewCompletionCache(10*time.Minute, 100)
	client := NewCachedModelClient(mock, cache)

	ctx := context.Background()

	if _, err := client.Complete(ctx, "extract", 1500); err == nil {
		t.Fatal("expected error from underlying client")
	}

	mock.err = nil
	mock.completion = "recovered"

	completion, err := client.Complete(ctx, "extract", 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion != "recovered" {
		t.Errorf("failure should not be cached, got %s", completion)
	}
	if mock.callCount != 2 {
		t.Errorf("expected 2 calls, got %d", mock.callCount)
	}
}
