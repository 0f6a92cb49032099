package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/coreg/internal/model"
)

// Cache stores resolved sequences between runs
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SequenceKey generates the cache key for one accession in one database
func SequenceKey(db, accession string) string {
	hash := sha256.Sum256([]byte(db + "\x00" + accession))
	return "coreg-seq-v1-" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: memory in front of disk, or a
// no-op cache when caching is disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return NopCache{}
	}
	return NewLayeredCache(
		NewMemoryCache(time.Hour, 10*time.Minute),
		NewDiskCache(cfg.Dir, cfg.TTL),
	)
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(string) ([]byte, bool)               { return nil, false }
func (NopCache) Set(string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(string) error                     { return nil }
func (NopCache) Clear() error                            { return nil }
