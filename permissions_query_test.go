package stoat

import (
	"testing"
	"time"
)

func TestServerPermissionsOwnerGetsGrantAllSafe(t *testing.T) {
	t.Parallel()
	server := &Server{ID: "s1", Owner: "u1"}
	member := &Member{Key: MemberKey{Server: "s1", User: "u1"}}

	got := ServerPermissions(server, member, time.Now())
	if got != GrantAllSafe {
		t.Errorf("ServerPermissions = %#x, want GrantAllSafe", got)
	}
}

func TestServerPermissionsWrongServerReturnsZero(t *testing.T) {
	t.Parallel()
	server := &Server{ID: "s1", Owner: "u1"}
	member := &Member{Key: MemberKey{Server: "other", User: "u2"}}

	if got := ServerPermissions(server, member, time.Now()); got != 0 {
		t.Errorf("ServerPermissions = %#x, want 0", got)
	}
}

func TestServerPermissionsAppliesHighestRankRoleLast(t *testing.T) {
	t.Parallel()
	server := &Server{
		ID:    "s1",
		Owner: "owner",
		Roles: map[ID]Role{
			"low":  {Rank: 10, Permissions: Override{Allow: 0b001, Deny: 0}},
			"high": {Rank: 1, Permissions: Override{Allow: 0, Deny: 0b001}},
		},
	}
	member := &Member{Key: MemberKey{Server: "s1", User: "u1"}, Roles: []ID{"low", "high"}}

	got := ServerPermissions(server, member, time.Now())
	if got.Has(0b001) {
		t.Error("higher-rank role's deny should apply last and win")
	}
}

func TestServerPermissionsTimeoutRestrictsToAllowInTimeout(t *testing.T) {
	t.Parallel()
	future := time.Now().Add(time.Hour)
	server := &Server{ID: "s1", Owner: "owner", DefaultPermissions: GrantAllSafe}
	member := &Member{Key: MemberKey{Server: "s1", User: "u1"}, Timeout: &future}

	got := ServerPermissions(server, member, time.Now())
	if got != AllowInTimeout {
		t.Errorf("ServerPermissions = %#x, want AllowInTimeout", got)
	}
}

func TestChannelPermissionsSavedMessagesOwnerOnly(t *testing.T) {
	t.Parallel()
	ch := &Channel{Kind: ChannelSavedMessages, User: "u1"}

	if got := ChannelPermissions(ch, "u1", nil, nil, time.Now()); got != DefaultPermissionSavedMessages {
		t.Errorf("owner permissions = %#x", got)
	}
	if got := ChannelPermissions(ch, "u2", nil, nil, time.Now()); got != 0 {
		t.Errorf("non-owner permissions = %#x, want 0", got)
	}
}

func TestChannelPermissionsDirectMessageRecipientsOnly(t *testing.T) {
	t.Parallel()
	ch := &Channel{Kind: ChannelDirectMessage, Recipients: []ID{"u1", "u2"}}

	if got := ChannelPermissions(ch, "u1", nil, nil, time.Now()); got != DefaultPermissionDirectMessage {
		t.Errorf("recipient permissions = %#x", got)
	}
	if got := ChannelPermissions(ch, "u3", nil, nil, time.Now()); got != 0 {
		t.Errorf("non-recipient permissions = %#x, want 0", got)
	}
}

func TestChannelPermissionsGroupOwnerGetsGrantAllSafe(t *testing.T) {
	t.Parallel()
	ch := &Channel{Kind: ChannelGroup, Owner: "u1", Recipients: []ID{"u1", "u2"}}

	if got := ChannelPermissions(ch, "u1", nil, nil, time.Now()); got != GrantAllSafe {
		t.Errorf("group owner permissions = %#x", got)
	}
}

func TestChannelPermissionsTextChannelNeedsServerAndMember(t *testing.T) {
	t.Parallel()
	ch := &Channel{Kind: ChannelText, ServerID: "s1"}

	if got := ChannelPermissions(ch, "u1", nil, nil, time.Now()); got != 0 {
		t.Errorf("missing server/member permissions = %#x, want 0", got)
	}
}

func TestChannelPermissionsTextChannelRolePermissionOverridesServerDefault(t *testing.T) {
	t.Parallel()
	server := &Server{
		ID: "s1",
		Roles: map[ID]Role{
			"r1": {Rank: 1, Permissions: Override{}},
		},
	}
	ch := &Channel{
		Kind:     ChannelText,
		ServerID: "s1",
		RolePermissions: map[ID]Override{
			"r1": {Allow: 0b10},
		},
	}
	member := &Member{Key: MemberKey{Server: "s1", User: "u1"}, Roles: []ID{"r1"}}

	got := ChannelPermissions(ch, "u1", server, member, time.Now())
	if !got.Has(0b10) {
		t.Errorf("channel role override should grant bit, got %#x", got)
	}
}

func TestPermissionsApplyAndRestrict(t *testing.T) {
	t.Parallel()
	var p Permissions
	p.Apply(Override{Allow: 0b111, Deny: 0b010})
	if p != 0b101 {
		t.Fatalf("p = %#b, want 0b101", p)
	}
	p.Restrict(0b001)
	if p != 0b001 {
		t.Fatalf("p after restrict = %#b, want 0b001", p)
	}
}

func TestMemberHasRoleAndRemoveRole(t *testing.T) {
	t.Parallel()
	m := &Member{Roles: []ID{"r1", "r2", "r3"}}
	if !m.HasRole("r2") {
		t.Error("HasRole(r2) = false")
	}
	m.RemoveRole("r2")
	if m.HasRole("r2") {
		t.Error("r2 should be removed")
	}
	if len(m.Roles) != 2 {
		t.Errorf("Roles = %v, want len 2", m.Roles)
	}
}

func TestMemberInTimeout(t *testing.T) {
	t.Parallel()
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	m := &Member{Timeout: &future}
	if !m.InTimeout(now) {
		t.Error("future timeout should report InTimeout")
	}
	m = &Member{Timeout: &past}
	if m.InTimeout(now) {
		t.Error("past timeout should not report InTimeout")
	}
	m = &Member{}
	if m.InTimeout(now) {
		t.Error("no timeout should not report InTimeout")
	}
}
