package db

import (
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"
)

// Cached report/dashboard responses are tracked per user so any ledger
// mutation can drop every stale report for that user in one sweep.
var (
	Cache          *ristretto.Cache[string, []byte]
	ReportCacheKeys = struct {
		sync.RWMutex
		m map[int64]map[string]struct{}
	}{m: make(map[int64]map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache")
	}
}

func SetReportCache(userID int64, cacheKey string, value []byte) {
	ReportCacheKeys.Lock()
	if ReportCacheKeys.m[userID] == nil {
		ReportCacheKeys.m[userID] = make(map[string]struct{})
	}
	ReportCacheKeys.m[userID][cacheKey] = struct{}{}
	ReportCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func GetReportCache(cacheKey string) ([]byte, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(cacheKey)
}

// ClearReportCachesForUser drops every cached report for one user. Called on
// every transaction or account mutation.
func ClearReportCachesForUser(userID int64) {
	ReportCacheKeys.Lock()
	for key := range ReportCacheKeys.m[userID] {
		Cache.Del(key)
	}
	delete(ReportCacheKeys.m, userID)
	ReportCacheKeys.Unlock()
}
