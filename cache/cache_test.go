package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stoat-chat/stoatgo"
)

func newTestCache(t *testing.T, fetchUser UserFetcher, fetchMember MemberFetcher) *Cache {
	t.Helper()
	c, err := New(fetchUser, fetchMember, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestApplyReadyInstallsSessionUserAndSeedsDMs(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil, nil)

	self := stoat.User{ID: "u_self", Relationship: stoat.RelationshipUser}
	other := stoat.User{ID: "u_other"}
	dm := stoat.Channel{ID: "c_dm", Kind: stoat.ChannelDirectMessage, Recipients: []stoat.ID{"u_self", "u_other"}}
	server := stoat.Server{ID: "s1", Owner: "u_self", Channels: []stoat.ID{"c_text"}}
	textCh := stoat.Channel{ID: "c_text", Kind: stoat.ChannelText, ServerID: "s1"}
	member := stoat.Member{Key: stoat.MemberKey{Server: "s1", User: "u_self"}}

	c.Apply(readyMsg(self, other, dm, textCh, server, member))

	if c.Self.ID() != "u_self" {
		t.Fatalf("Self.ID = %q, want u_self", c.Self.ID())
	}
	if c.Self.Mention() != "<@u_self>" {
		t.Errorf("Self.Mention = %q", c.Self.Mention())
	}
	if id, ok := c.DMChannel("u_other"); !ok || id != "c_dm" {
		t.Errorf("DMChannel(u_other) = %q, %v", id, ok)
	}
	if _, ok := c.Server("s1"); !ok {
		t.Error("server s1 should be cached")
	}
	if _, ok := c.MemberIfPresent(stoat.MemberKey{Server: "s1", User: "u_self"}); !ok {
		t.Error("member should be cached from Ready snapshot")
	}
}

func TestApplyMessageSetsLastMessageID(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil, nil)
	ch := stoat.Channel{ID: "c1", Kind: stoat.ChannelText, ServerID: "s1"}
	c.Apply(readyWithChannels(ch))

	msg := stoat.Message{ID: "m1", ChannelID: "c1"}
	c.Apply(wireMessage(msg))

	got, ok := c.Channel("c1")
	if !ok {
		t.Fatal("channel missing")
	}
	if got.LastMessageID == nil || *got.LastMessageID != "m1" {
		t.Errorf("LastMessageID = %v, want m1", got.LastMessageID)
	}
	if _, ok := c.Message("m1"); !ok {
		t.Error("message should be cached")
	}
}

func TestApplyMessageReactAndUnreact(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil, nil)
	c.Apply(readyWithChannels(stoat.Channel{ID: "c1", Kind: stoat.ChannelText, ServerID: "s1"}))
	c.Apply(wireMessage(stoat.Message{ID: "m1", ChannelID: "c1"}))

	c.Apply(reactMsg("m1", "c1", "u1", "e1"))
	msg, _ := c.Message("m1")
	if len(msg.Reactions["e1"]) != 1 {
		t.Fatalf("reactions = %v", msg.Reactions)
	}

	c.Apply(unreactMsg("m1", "c1", "u1", "e1"))
	msg, _ = c.Message("m1")
	if _, ok := msg.Reactions["e1"]; ok {
		t.Error("empty reaction set should be removed")
	}
}

func TestApplyServerDeleteCascades(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil, nil)
	server := stoat.Server{ID: "s1", Channels: []stoat.ID{"c1"}}
	ch := stoat.Channel{ID: "c1", Kind: stoat.ChannelText, ServerID: "s1"}
	emoji := stoat.Emoji{ID: "e1", ServerID: idPtr("s1")}
	member := stoat.Member{Key: stoat.MemberKey{Server: "s1", User: "u1"}}
	c.Apply(readyMsg(stoat.User{ID: "self", Relationship: stoat.RelationshipUser}, stoat.User{ID: "u1"}, stoat.Channel{}, ch, server, member))
	c.mu.Lock()
	c.emojis["e1"] = &emoji
	c.mu.Unlock()

	c.Apply(serverDeleteMsg("s1"))

	if _, ok := c.Server("s1"); ok {
		t.Error("server should be gone")
	}
	if _, ok := c.Channel("c1"); ok {
		t.Error("channel should cascade-delete")
	}
	if _, ok := c.Emoji("e1"); ok {
		t.Error("emoji should cascade-delete")
	}
	if _, ok := c.MemberIfPresent(stoat.MemberKey{Server: "s1", User: "u1"}); ok {
		t.Error("member should cascade-delete")
	}
}

func TestApplyMemberLeaveSelfTreatedAsServerDelete(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil, nil)
	server := stoat.Server{ID: "s1"}
	self := stoat.User{ID: "self", Relationship: stoat.RelationshipUser}
	c.Apply(readyMsg(self, stoat.User{}, stoat.Channel{}, stoat.Channel{}, server, stoat.Member{Key: stoat.MemberKey{Server: "s1", User: "self"}}))

	c.Apply(memberLeaveMsg("s1", "self"))

	if _, ok := c.Server("s1"); ok {
		t.Error("server should be gone after self-leave")
	}
}

func TestApplyRoleDeleteRemovesFromAllMembers(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil, nil)
	server := stoat.Server{ID: "s1", Roles: map[stoat.ID]stoat.Role{"r1": {Name: "mod"}}}
	m1 := stoat.Member{Key: stoat.MemberKey{Server: "s1", User: "u1"}, Roles: []stoat.ID{"r1", "r2"}}
	m2 := stoat.Member{Key: stoat.MemberKey{Server: "s1", User: "u2"}, Roles: []stoat.ID{"r1"}}
	c.Apply(readyMsg(stoat.User{ID: "self", Relationship: stoat.RelationshipUser}, stoat.User{}, stoat.Channel{}, stoat.Channel{}, server, m1))
	mc, err := c.memberCache("s1")
	if err != nil {
		t.Fatal(err)
	}
	mc.Set(&m2)

	c.Apply(roleDeleteMsg("s1", "r1"))

	got1, _ := c.MemberIfPresent(stoat.MemberKey{Server: "s1", User: "u1"})
	if got1.HasRole("r1") {
		t.Error("u1 should have lost r1")
	}
	if !got1.HasRole("r2") {
		t.Error("u1 should keep r2")
	}
	got2, _ := c.MemberIfPresent(stoat.MemberKey{Server: "s1", User: "u2"})
	if got2.HasRole("r1") {
		t.Error("u2 should have lost r1")
	}
	if _, ok := c.Server("s1"); !ok {
		t.Fatal("server missing")
	}
}

func TestMemberCacheSingleFlightCoalescesConcurrentMisses(t *testing.T) {
	t.Parallel()
	var calls int32
	fetchMember := func(ctx context.Context, key stoat.MemberKey) (*stoat.Member, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return &stoat.Member{Key: key}, nil
	}
	c := newTestCache(t, nil, fetchMember)

	const n = 8
	results := make(chan *stoat.Member, n)
	for i := 0; i < n; i++ {
		go func() {
			m, err := c.Member(context.Background(), stoat.MemberKey{Server: "s1", User: "u1"})
			if err != nil {
				t.Error(err)
				return
			}
			results <- m
		}()
	}
	for i := 0; i < n; i++ {
		<-results
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetchMember called %d times, want 1", got)
	}
}

func TestUserFetchThrough(t *testing.T) {
	t.Parallel()
	fetchUser := func(ctx context.Context, id stoat.ID) (*stoat.User, error) {
		return &stoat.User{ID: id, Username: "fetched"}, nil
	}
	c := newTestCache(t, fetchUser, nil)

	u, err := c.User(context.Background(), "u1")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u.Username != "fetched" {
		t.Errorf("Username = %q", u.Username)
	}
	time.Sleep(50 * time.Millisecond) // otter processes Set asynchronously
	if _, ok := c.UserIfPresent("u1"); !ok {
		t.Error("subsequent lookup should hit cache")
	}
}

func TestMemberCachePromoteMakesAbsenceAuthoritative(t *testing.T) {
	t.Parallel()
	calls := 0
	fetchMember := func(ctx context.Context, key stoat.MemberKey) (*stoat.Member, error) {
		calls++
		return &stoat.Member{Key: key}, nil
	}
	c := newTestCache(t, nil, fetchMember)
	if err := c.PromoteMembers("s1", []stoat.Member{{Key: stoat.MemberKey{Server: "s1", User: "u1"}}}); err != nil {
		t.Fatal(err)
	}

	m, err := c.Member(context.Background(), stoat.MemberKey{Server: "s1", User: "u2"})
	if err != nil {
		t.Fatalf("Member: %v", err)
	}
	if m != nil {
		t.Errorf("promoted absence should return nil, got %v", m)
	}
	if calls != 0 {
		t.Errorf("fetch should never be called once promoted, calls = %d", calls)
	}
}

func idPtr(id stoat.ID) *stoat.ID { return &id }
