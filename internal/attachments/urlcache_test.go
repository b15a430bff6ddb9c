package attachments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"testing"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

type countingSigner struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (s *countingSigner) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return "", errors.New("signing backend down")
	}
	return fmt.Sprintf("https://signed.example/%s?n=%d", key, s.calls), nil
}

func (s *countingSigner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestURLCache_ServesCachedURLUntilRefreshMargin(t *testing.T) {
	signer := &countingSigner{}
	cache := NewURLCache(signer, time.Hour, logger.NewNop())
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now := base
	cache.now = func() time.Time { return now }

	first, err := cache.Resolve(context.Background(), "u/scope/a.jpg")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := cache.Resolve(context.Background(), "u/scope/a.jpg")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if first != second || signer.count() != 1 {
		t.Fatalf("expected cached URL on second resolve, calls=%d", signer.count())
	}

	// Just inside the refresh margin the cached URL is considered stale.
	now = base.Add(time.Hour - refreshMargin)
	third, err := cache.Resolve(context.Background(), "u/scope/a.jpg")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if third == first || signer.count() != 2 {
		t.Fatalf("expected re-sign at refresh margin, calls=%d", signer.count())
	}
}

func TestURLCache_EvictForcesReSign(t *testing.T) {
	signer := &countingSigner{}
	cache := NewURLCache(signer, time.Hour, logger.NewNop())

	if _, err := cache.Resolve(context.Background(), "k"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	cache.Evict("k")
	if _, err := cache.Resolve(context.Background(), "k"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if signer.count() != 2 {
		t.Fatalf("expected 2 signing calls after evict, got %d", signer.count())
	}
}

func TestURLCache_SigningFailurePropagates(t *testing.T) {
	signer := &countingSigner{fail: true}
	cache := NewURLCache(signer, time.Hour, logger.NewNop())
	if _, err := cache.Resolve(context.Background(), "k"); err == nil {
		t.Fatalf("expected signing error to propagate")
	}
}

func TestURLCache_BoundsEntryCount(t *testing.T) {
	signer := &countingSigner{}
	cache := NewURLCache(signer, time.Hour, logger.NewNop())
	for i := 0; i < maxCacheEntries+10; i++ {
		if _, err := cache.Resolve(context.Background(), fmt.Sprintf("k-%d", i)); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	cache.mu.Lock()
	n := len(cache.entries)
	cache.mu.Unlock()
	if n > maxCacheEntries {
		t.Fatalf("expected at most %d entries, got %d", maxCacheEntries, n)
	}
}
