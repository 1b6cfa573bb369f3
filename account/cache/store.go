package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/model"
)

const adminsCacheKey = "admins"

// Cache is a read-through cache for users and the administrator list. Admins
// are looked up for every flagged piece of content, so the list is cached as
// a whole.
//
// Writes go to the store before the cache is invalidated. Each invalidation
// bumps a generation, and a read only fills the cache if no invalidation
// happened while it was reading the store.
type Cache struct {
	db    account.Store
	cache *ttlcache.Cache

	mu         sync.Mutex
	generation uint64
}

func NewInCache(db account.Store, ttl time.Duration) account.Store {
	cache := ttlcache.NewCache()
	cache.SetTTL(ttl)
	return &Cache{
		db:    db,
		cache: cache,
	}
}

func (c *Cache) CreateUser(ctx context.Context, user *account.User) error {
	if err := c.db.CreateUser(ctx, user); err != nil {
		return err
	}
	if user.IsAdmin {
		c.invalidate(adminsCacheKey)
	}
	return nil
}

func (c *Cache) GetUser(ctx context.Context, id model.UserID) (*account.User, error) {
	cacheKey := toCacheKey(id)

	cached, ok := c.cache.Get(cacheKey)
	if !ok {
		generation := c.currentGeneration()

		user, err := c.db.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}

		c.fill(generation, cacheKey, user.Clone())
		return user, nil
	}

	return cached.(*account.User).Clone(), nil
}

func (c *Cache) GetAdmins(ctx context.Context) ([]*account.User, error) {
	cached, ok := c.cache.Get(adminsCacheKey)
	if !ok {
		generation := c.currentGeneration()

		admins, err := c.db.GetAdmins(ctx)
		if err != nil {
			return nil, err
		}

		c.fill(generation, adminsCacheKey, cloneAll(admins))
		return admins, nil
	}

	return cloneAll(cached.([]*account.User)), nil
}

func (c *Cache) SetAdmin(ctx context.Context, id model.UserID, isAdmin bool) error {
	if err := c.db.SetAdmin(ctx, id, isAdmin); err != nil {
		return err
	}
	c.invalidate(toCacheKey(id), adminsCacheKey)
	return nil
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.cache.Purge()
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// fill caches value unless the cache was invalidated after generation was
// read.
func (c *Cache) fill(generation uint64, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation == generation {
		c.cache.Set(key, value)
	}
}

func (c *Cache) invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for _, key := range keys {
		c.cache.Remove(key)
	}
}

func cloneAll(users []*account.User) []*account.User {
	cloned := make([]*account.User, len(users))
	for i, user := range users {
		cloned[i] = user.Clone()
	}
	return cloned
}

func toCacheKey(id model.UserID) string {
	return "user:" + model.UserIDString(id)
}
