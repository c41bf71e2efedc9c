package services

import (
	"context"
	"sync"
	"time"
)

// Cache tags group response cache entries by the resource they were built from.
const (
	CacheTagNotices          = "notices"
	CacheTagBuildingComplex  = "buildingComplex"
	CacheTagOrganisation     = "organisation"
	CacheTagUser             = "user"
	defaultCacheCleanupCycle = 5 * time.Minute
)

// InterfaceCacheService stores rendered GET responses grouped by tag.
type InterfaceCacheService interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, tag, key string, content []byte, ttl time.Duration) error
	InvalidateTag(ctx context.Context, tag string) error
	Purge(ctx context.Context) error
}

type memoryCacheEntry struct {
	tag        string
	content    []byte
	expiration time.Time
}

// MemoryCacheService is the single-instance cache used when Redis is not configured.
type MemoryCacheService struct {
	mu    sync.RWMutex
	items map[string]memoryCacheEntry
	now   func() time.Time
}

func NewMemoryCacheService() *MemoryCacheService {
	return &MemoryCacheService{
		items: make(map[string]memoryCacheEntry),
		now:   time.Now,
	}
}

func (s *MemoryCacheService) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, found := s.items[key]
	s.mu.RUnlock()

	if !found || !entry.expiration.After(s.now()) {
		return nil, false, nil
	}
	return entry.content, true, nil
}

func (s *MemoryCacheService) Set(_ context.Context, tag, key string, content []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = memoryCacheEntry{
		tag:        tag,
		content:    append([]byte(nil), content...),
		expiration: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryCacheService) InvalidateTag(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.items {
		if entry.tag == tag {
			delete(s.items, key)
		}
	}
	return nil
}

func (s *MemoryCacheService) Purge(_ context.Context) error {
	s.mu.Lock()
	s.items = make(map[string]memoryCacheEntry)
	s.mu.Unlock()
	return nil
}

// Len reports how many entries, expired or not, are held.
func (s *MemoryCacheService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// CleanExpired drops expired entries.
func (s *MemoryCacheService) CleanExpired() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.items {
		if entry.expiration.Before(now) {
			delete(s.items, key)
		}
	}
}

// RunCleanup calls CleanExpired periodically until ctx is done.
func (s *MemoryCacheService) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(defaultCacheCleanupCycle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CleanExpired()
		}
	}
}

// CacheKey namespaces a response fingerprint under its tag.
func CacheKey(tag, fingerprint string) string {
	return cacheKeyPrefix + tag + ":" + fingerprint
}
