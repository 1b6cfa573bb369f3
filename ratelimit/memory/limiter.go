package memory

import (
	"context"
	"sync"

	"github.com/ReneKroon/ttlcache"

	"github.com/blueprint-hub/hub-server/ratelimit"
)

type counter struct {
	n int
}

// Limiter counts attempts in process. Windows start at the first attempt and
// are not extended by later ones.
type Limiter struct {
	mu    sync.Mutex
	cache *ttlcache.Cache
}

func NewLimiter() *Limiter {
	cache := ttlcache.NewCache()
	cache.SkipTtlExtensionOnHit(true)
	return &Limiter{
		cache: cache,
	}
}

func (l *Limiter) Allow(_ context.Context, rule ratelimit.Rule, subject string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := rule.Key(subject)

	cached, ok := l.cache.Get(key)
	if !ok {
		l.cache.SetWithTTL(key, &counter{n: 1}, rule.Window)
		return rule.Limit >= 1, nil
	}

	c := cached.(*counter)
	c.n++
	return c.n <= rule.Limit, nil
}

func (l *Limiter) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache.Purge()
}

func (l *Limiter) Close() {
	l.cache.Close()
}
