package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/sellerledger/backend/src/models"
)

const (
	ckSummary = "summary_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// ReportCache holds derived per-user reports. Anything that changes a user's
// transactions or prices must call InvalidateUser.
type ReportCache struct {
	c   *cache.Cache
	ttl time.Duration

	mu          sync.Mutex
	generations map[int64]uint64
}

func NewReportCache(ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultCacheExpiration
	}
	return &ReportCache{
		c:           cache.New(ttl, CacheCleanupInterval),
		ttl:         ttl,
		generations: make(map[int64]uint64),
	}
}

func (rc *ReportCache) Summary(userID int64) (*models.TransactionSummary, bool) {
	v, found := rc.c.Get(fmt.Sprintf(ckSummary, userID))
	if !found {
		return nil, false
	}
	summary, ok := v.(*models.TransactionSummary)
	return summary, ok
}

// Generation returns the user's invalidation counter. Read it before loading
// the data a report is derived from and pass it to SetSummary.
func (rc *ReportCache) Generation(userID int64) uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generations[userID]
}

// SetSummary caches summary unless the user was invalidated since gen was
// read. It reports whether the summary was stored.
func (rc *ReportCache) SetSummary(userID int64, gen uint64, summary *models.TransactionSummary) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.generations[userID] != gen {
		return false
	}
	rc.c.Set(fmt.Sprintf(ckSummary, userID), summary, rc.ttl)
	return true
}

func (rc *ReportCache) InvalidateUser(userID int64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.generations[userID]++
	rc.c.Delete(fmt.Sprintf(ckSummary, userID))
}
