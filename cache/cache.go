// Package cache holds the shared, multi-reader single-writer view of
// platform state a gateway session builds up from Ready and subsequent
// events (spec §4.E). Reads may run concurrently with each other and
// with event application; event application itself is expected to run
// on a single goroutine (the gateway's dispatch loop).
package cache

import (
	"context"
	"sync"

	"github.com/stoat-chat/stoatgo"
	"github.com/stoat-chat/stoatgo/internal/telemetry"
)

const (
	defaultUserCacheSize    = 1024
	defaultMessageCacheSize = 4096
)

// UserFetcher and MemberFetcher abstract the HTTP calls a cache miss
// falls through to, so this package depends only on stoat types and not
// on the concrete HTTP facade.
type UserFetcher = Fetcher[stoat.ID, *stoat.User]
type MemberFetcher func(ctx context.Context, key stoat.MemberKey) (*stoat.Member, error)

// sessionUser is installed once, at Ready, and never reassigned: id and
// the precomputed mention string are immutable afterward (spec §4.E).
type sessionUser struct {
	once    sync.Once
	id      stoat.ID
	mention string
}

func (s *sessionUser) install(id stoat.ID) {
	s.once.Do(func() {
		s.id = id
		s.mention = id.Mention()
	})
}

// ID returns the session user's id, or "" before Ready has been applied.
func (s *sessionUser) ID() stoat.ID { return s.id }

// Mention returns the precomputed "<@id>" form, or "" before Ready.
func (s *sessionUser) Mention() string { return s.mention }

// Cache is the event-sourced view of platform state built up from a
// gateway session's Ready snapshot and subsequent events.
type Cache struct {
	Self sessionUser

	users    *fetchThrough[stoat.ID, *stoat.User]
	messages *fetchThrough[stoat.ID, *stoat.Message]

	mu       sync.RWMutex
	servers  map[stoat.ID]*stoat.Server
	channels map[stoat.ID]*stoat.Channel
	emojis   map[stoat.ID]*stoat.Emoji
	members  map[stoat.ID]*MemberCache // keyed by server id
	userDMs  map[stoat.ID]stoat.ID     // other-user-id -> DM channel-id

	fetchUser   UserFetcher
	fetchMember MemberFetcher
	metrics     *telemetry.Metrics
}

// New builds an empty cache. fetchUser and fetchMember back the
// single-flight fetch-through paths for users and members; either may be
// nil, in which case a miss simply returns an APIError with type NotFound.
// metrics may be nil to disable instrumentation.
func New(fetchUser UserFetcher, fetchMember MemberFetcher, metrics *telemetry.Metrics) (*Cache, error) {
	users, err := newFetchThrough[stoat.ID, *stoat.User](defaultUserCacheSize, func(id stoat.ID) string { return string(id) })
	if err != nil {
		return nil, err
	}
	messages, err := newFetchThrough[stoat.ID, *stoat.Message](defaultMessageCacheSize, func(id stoat.ID) string { return string(id) })
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		users.onHit = func() { metrics.CacheHits.WithLabelValues("user").Inc() }
		users.onMiss = func() { metrics.CacheMisses.WithLabelValues("user").Inc() }
	}
	return &Cache{
		users:       users,
		messages:    messages,
		servers:     make(map[stoat.ID]*stoat.Server),
		channels:    make(map[stoat.ID]*stoat.Channel),
		emojis:      make(map[stoat.ID]*stoat.Emoji),
		members:     make(map[stoat.ID]*MemberCache),
		userDMs:     make(map[stoat.ID]stoat.ID),
		fetchUser:   fetchUser,
		fetchMember: fetchMember,
		metrics:     metrics,
	}, nil
}

// User returns a cached user, fetching through HTTP on a miss if a
// fetcher was configured.
func (c *Cache) User(ctx context.Context, id stoat.ID) (*stoat.User, error) {
	if c.fetchUser == nil {
		if u, ok := c.users.GetIfPresent(id); ok {
			return u, nil
		}
		return nil, stoat.NewAPIError(&stoat.APIError{Type: stoat.ErrTypeNotFound})
	}
	return c.users.Get(ctx, id, c.fetchUser)
}

// UserIfPresent returns a cached user without fetching.
func (c *Cache) UserIfPresent(id stoat.ID) (*stoat.User, bool) {
	return c.users.GetIfPresent(id)
}

// Member returns a cached server member, fetching through HTTP on a miss
// if a fetcher was configured. The per-server MemberCache is created
// lazily on first access.
func (c *Cache) Member(ctx context.Context, key stoat.MemberKey) (*stoat.Member, error) {
	mc, err := c.memberCache(key.Server)
	if err != nil {
		return nil, err
	}
	if c.fetchMember == nil {
		if m, ok := mc.GetIfPresent(key.User); ok {
			return m, nil
		}
		return nil, stoat.NewAPIError(&stoat.APIError{Type: stoat.ErrTypeNotFound})
	}
	return mc.Get(ctx, key.User, func(ctx context.Context, userID stoat.ID) (*stoat.Member, error) {
		return c.fetchMember(ctx, stoat.MemberKey{Server: key.Server, User: userID})
	})
}

// MemberIfPresent returns a cached server member without fetching.
func (c *Cache) MemberIfPresent(key stoat.MemberKey) (*stoat.Member, bool) {
	c.mu.RLock()
	mc, ok := c.members[key.Server]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return mc.GetIfPresent(key.User)
}

func (c *Cache) memberCache(serverID stoat.ID) (*MemberCache, error) {
	c.mu.RLock()
	mc, ok := c.members[serverID]
	c.mu.RUnlock()
	if ok {
		return mc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if mc, ok := c.members[serverID]; ok {
		return mc, nil
	}
	mc, err := newMemberCache(c.metrics)
	if err != nil {
		return nil, err
	}
	c.members[serverID] = mc
	return mc, nil
}

// PromoteMembers installs a full, authoritative member list for a
// server, typically after fetching every member over HTTP.
func (c *Cache) PromoteMembers(serverID stoat.ID, members []stoat.Member) error {
	mc, err := c.memberCache(serverID)
	if err != nil {
		return err
	}
	mc.Promote(members)
	return nil
}

// Server returns a cached server and whether it was present.
func (c *Cache) Server(id stoat.ID) (*stoat.Server, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.servers[id]
	return s, ok
}

// Channel returns a cached channel and whether it was present.
func (c *Cache) Channel(id stoat.ID) (*stoat.Channel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch, ok := c.channels[id]
	return ch, ok
}

// Emoji returns a cached emoji and whether it was present.
func (c *Cache) Emoji(id stoat.ID) (*stoat.Emoji, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.emojis[id]
	return e, ok
}

// Message returns a cached message without fetching; messages never
// single-flight fetch through (spec §4.E) so callers that miss are
// expected to fall back to the HTTP facade themselves.
func (c *Cache) Message(id stoat.ID) (*stoat.Message, bool) {
	return c.messages.GetIfPresent(id)
}

// DMChannel returns the DM channel-id for a counterpart user, if one is
// known.
func (c *Cache) DMChannel(otherUserID stoat.ID) (stoat.ID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.userDMs[otherUserID]
	return id, ok
}
