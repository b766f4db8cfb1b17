package cache

import (
	"context"
	"sync"

	"github.com/stoat-chat/stoatgo"
	"github.com/stoat-chat/stoatgo/internal/telemetry"
)

const defaultMemberCacheSize = 128

// MemberCache holds one server's members. It starts as a size-bounded LRU
// with single-flight fetch-through and can be promoted to a full map once
// every member of the server has been fetched (spec §4.E), after which
// lookups never miss and Get never calls fetch.
type MemberCache struct {
	mu        sync.RWMutex
	full      bool
	fullMap   map[stoat.ID]*stoat.Member // keyed by user id; present only once promoted
	lru       *fetchThrough[stoat.ID, *stoat.Member]
}

func newMemberCache(metrics *telemetry.Metrics) (*MemberCache, error) {
	lru, err := newFetchThrough[stoat.ID, *stoat.Member](defaultMemberCacheSize, func(id stoat.ID) string {
		return string(id)
	})
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		lru.onHit = func() { metrics.CacheHits.WithLabelValues("member").Inc() }
		lru.onMiss = func() { metrics.CacheMisses.WithLabelValues("member").Inc() }
	}
	return &MemberCache{lru: lru}, nil
}

// GetIfPresent returns a cached member without fetching.
func (mc *MemberCache) GetIfPresent(userID stoat.ID) (*stoat.Member, bool) {
	mc.mu.RLock()
	full := mc.full
	fullMap := mc.fullMap
	mc.mu.RUnlock()
	if full {
		m, ok := fullMap[userID]
		return m, ok
	}
	return mc.lru.GetIfPresent(userID)
}

// Get returns the cached member, fetching through fetch on a miss. Once
// promoted, a miss against the full map is authoritative absence and
// fetch is never called.
func (mc *MemberCache) Get(ctx context.Context, userID stoat.ID, fetch Fetcher[stoat.ID, *stoat.Member]) (*stoat.Member, error) {
	mc.mu.RLock()
	full := mc.full
	fullMap := mc.fullMap
	mc.mu.RUnlock()
	if full {
		return fullMap[userID], nil
	}
	return mc.lru.Get(ctx, userID, fetch)
}

// Set inserts or overwrites a single member.
func (mc *MemberCache) Set(m *stoat.Member) {
	mc.mu.RLock()
	full := mc.full
	mc.mu.RUnlock()
	if full {
		mc.mu.Lock()
		mc.fullMap[m.Key.User] = m
		mc.mu.Unlock()
		return
	}
	mc.lru.Set(m.Key.User, m)
}

// Invalidate removes a single member.
func (mc *MemberCache) Invalidate(userID stoat.ID) {
	mc.mu.Lock()
	if mc.full {
		delete(mc.fullMap, userID)
		mc.mu.Unlock()
		return
	}
	mc.mu.Unlock()
	mc.lru.Invalidate(userID)
}

// RemoveRole deletes roleID from every cached member's role set (spec
// §4.E ServerRoleDelete cascade). Only affects members currently cached;
// the full map is authoritative once promoted, the LRU is best-effort.
func (mc *MemberCache) RemoveRole(roleID stoat.ID) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.full {
		for _, m := range mc.fullMap {
			m.RemoveRole(roleID)
		}
		return
	}
	for _, m := range mc.lru.cache.All() {
		m.RemoveRole(roleID)
	}
}

// Promote replaces the cache with a full, authoritative member map,
// typically after fetching every member of the server over HTTP.
func (mc *MemberCache) Promote(members []stoat.Member) {
	full := make(map[stoat.ID]*stoat.Member, len(members))
	for i := range members {
		m := members[i]
		full[m.Key.User] = &m
	}
	mc.mu.Lock()
	mc.full = true
	mc.fullMap = full
	mc.mu.Unlock()
}

// SeedSelf installs the session user with zero roles, as ServerCreate
// does for the server the caller just created (spec §4.E).
func (mc *MemberCache) SeedSelf(serverID, userID stoat.ID) {
	mc.Set(&stoat.Member{Key: stoat.MemberKey{Server: serverID, User: userID}})
}
