package common

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

// GetBool returns the cached boolean under key. Values of any other type count as a miss.
func (c *Cache) GetBool(key string) (bool, bool) {
	v, ok := c.Cache.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

func CacheKeyConnectivity(host string) string {
	return "connectivity:" + host
}

func CacheKeyIsAuthor(ownerID int, slug string) string {
	return "is_author:" + strconv.Itoa(ownerID) + ":" + slug
}
