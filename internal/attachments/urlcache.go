package attachments

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

// refreshMargin is how long before actual expiry a cached URL stops being
// served, so a caller never receives a URL about to go stale mid-use.
const refreshMargin = 5 * time.Minute

const maxCacheEntries = 256

// Signer is the one object-store capability the cache needs.
type Signer interface {
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type cacheEntry struct {
	url       string
	expiresAt time.Time
}

// URLCache memoizes signed read URLs per object key. Concurrent misses for
// the same key collapse into a single signing call.
type URLCache struct {
	log    *logger.Logger
	signer Signer
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

func NewURLCache(signer Signer, ttl time.Duration, baseLog *logger.Logger) *URLCache {
	if ttl <= refreshMargin {
		ttl = time.Hour
	}
	return &URLCache{
		log:     baseLog.With("component", "URLCache"),
		signer:  signer,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

func (c *URLCache) Resolve(ctx context.Context, key string) (string, error) {
	if url, ok := c.fresh(key); ok {
		return url, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have refreshed the entry already.
		if url, ok := c.fresh(key); ok {
			return url, nil
		}
		url, err := c.signer.SignedURL(ctx, key, c.ttl)
		if err != nil {
			return nil, err
		}
		c.store(key, url)
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *URLCache) Evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *URLCache) fresh(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Add(refreshMargin).Before(e.expiresAt) {
		return "", false
	}
	return e.url, true
}

func (c *URLCache) store(key, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= maxCacheEntries {
		c.evictSoonestLocked()
	}
	c.entries[key] = cacheEntry{url: url, expiresAt: c.now().Add(c.ttl)}
}

// evictSoonestLocked drops the entry closest to expiry. Callers hold c.mu.
func (c *URLCache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for k, e := range c.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim, soonest = k, e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}
