package server

import (
	"github.com/coocood/freecache"
)

// maxKeyLen is freecache's key size limit.
const maxKeyLen = 65535

// Cache holds distilled payloads keyed by transcript.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type freeCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewCache returns a freecache of sizeMB megabytes with entries living ttl
// seconds. A non-positive size disables caching.
func NewCache(sizeMB, ttl int) Cache {
	if sizeMB <= 0 {
		return noopCache{}
	}
	return &freeCache{cache: freecache.NewCache(sizeMB * 1024 * 1024), ttl: max(ttl, 0)}
}

func (c *freeCache) Get(key string) ([]byte, bool) {
	if len(key) > maxKeyLen {
		return nil, false
	}
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *freeCache) Set(key string, value []byte) {
	if len(key) > maxKeyLen {
		return
	}
	_ = c.cache.Set([]byte(key), value, c.ttl)
}

type noopCache struct{}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}
