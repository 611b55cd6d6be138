package rdl

import (
	"container/list"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the report cache
type CacheConfig struct {
	// MaxSize is the maximum number of reports to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached reports. 0 means no expiration.
	TTL time.Duration
}

// ReportCache keeps prepared reports by key with LRU eviction and optional expiry.
type ReportCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
	now    func() time.Time
}

type cacheEntry struct {
	key     string
	report  *PreparedReport
	expiry  time.Time
	element *list.Element
}

// NewReportCache creates a report cache sized from the global configuration
func NewReportCache() *ReportCache {
	config := GetGlobalConfig()
	return NewReportCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

// NewReportCacheWithConfig creates a report cache with the given configuration
func NewReportCacheWithConfig(config CacheConfig) *ReportCache {
	return &ReportCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
		now:    time.Now,
	}
}

// Get returns a cached report. Expired entries are dropped.
func (rc *ReportCache) Get(key string) (*PreparedReport, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	entry, exists := rc.cache[key]
	if !exists {
		return nil, false
	}
	if rc.expired(entry) {
		rc.removeEntry(entry)
		return nil, false
	}

	rc.lru.MoveToFront(entry.element)
	return entry.report, true
}

// Set adds or replaces a report in the cache
func (rc *ReportCache) Set(key string, report *PreparedReport) {
	if rc.config.MaxSize <= 0 {
		return
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if existing, exists := rc.cache[key]; exists {
		existing.report = report
		existing.expiry = rc.expiry()
		rc.lru.MoveToFront(existing.element)
		return
	}

	for rc.lru.Len() >= rc.config.MaxSize {
		oldest := rc.lru.Back()
		if oldest == nil {
			break
		}
		rc.removeEntry(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{
		key:    key,
		report: report,
		expiry: rc.expiry(),
	}
	entry.element = rc.lru.PushFront(entry)
	rc.cache[key] = entry
}

// Prepare returns the cached report for key or prepares and caches a new one.
func (rc *ReportCache) Prepare(key string, prepare func() (*PreparedReport, error)) (*PreparedReport, error) {
	if report, ok := rc.Get(key); ok {
		return report, nil
	}
	report, err := prepare()
	if err != nil {
		return nil, err
	}
	rc.Set(key, report)
	return report, nil
}

// Remove drops a report from the cache
func (rc *ReportCache) Remove(key string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if entry, exists := rc.cache[key]; exists {
		rc.removeEntry(entry)
	}
}

// Clear removes all reports from the cache
func (rc *ReportCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache = make(map[string]*cacheEntry)
	rc.lru = list.New()
}

// Size returns the current number of cached reports
func (rc *ReportCache) Size() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.cache)
}

// Configure replaces the cache limits and evicts entries over the new size.
func (rc *ReportCache) Configure(config CacheConfig) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.config = config
	for rc.lru.Len() > 0 && rc.lru.Len() > config.MaxSize {
		rc.removeEntry(rc.lru.Back().Value.(*cacheEntry))
	}
}

func (rc *ReportCache) expiry() time.Time {
	if rc.config.TTL <= 0 {
		return time.Time{}
	}
	return rc.now().Add(rc.config.TTL)
}

func (rc *ReportCache) expired(entry *cacheEntry) bool {
	return !entry.expiry.IsZero() && rc.now().After(entry.expiry)
}

// removeEntry must be called with rc.mu held.
func (rc *ReportCache) removeEntry(entry *cacheEntry) {
	delete(rc.cache, entry.key)
	rc.lru.Remove(entry.element)
}
