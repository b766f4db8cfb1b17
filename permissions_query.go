package stoat

import (
	"sort"
	"time"
)

// ServerPermissions computes a member's effective permission value within
// their server (spec §4.E). Returns 0 if member does not belong to
// server.
func ServerPermissions(server *Server, member *Member, now time.Time) Permissions {
	if member.Key.Server != server.ID {
		return 0
	}
	if member.Key.User == server.Owner {
		return GrantAllSafe
	}

	value := server.DefaultPermissions
	for _, o := range rolesByRankDescending(server.Roles, member.Roles) {
		value.Apply(o)
	}

	if member.InTimeout(now) {
		value.Restrict(AllowInTimeout)
	}
	return value
}

// ChannelPermissions computes userID's effective permission value within
// channel, branching on the channel variant per spec §4.E. member and
// server may be nil when the variant does not need them (SavedMessages,
// DirectMessage, Group).
func ChannelPermissions(channel *Channel, userID ID, server *Server, member *Member, now time.Time) Permissions {
	switch channel.Kind {
	case ChannelSavedMessages:
		if channel.User == userID {
			return DefaultPermissionSavedMessages
		}
		return 0

	case ChannelDirectMessage:
		if channel.Recipient(userID) {
			return DefaultPermissionDirectMessage
		}
		return 0

	case ChannelGroup:
		if channel.Owner == userID {
			return GrantAllSafe
		}
		if !channel.Recipient(userID) {
			return 0
		}
		if channel.GroupPerms != nil {
			return *channel.GroupPerms
		}
		return DefaultPermissionDirectMessage

	case ChannelText, ChannelVoice:
		if server == nil || member == nil {
			return 0
		}
		value := ServerPermissions(server, member, now)
		if channel.DefaultPermissions != nil {
			value.Apply(*channel.DefaultPermissions)
		}
		for _, o := range channelRolesByRankDescending(server.Roles, channel.RolePermissions, member.Roles) {
			value.Apply(o)
		}
		if member.InTimeout(now) {
			value.Restrict(AllowInTimeout)
		}
		return value

	default:
		return 0
	}
}

// rolesByRankDescending returns the Override for each role a member holds
// that exists on the server, ordered by rank descending so that applying
// them in order leaves the smallest rank (highest priority) applied last.
func rolesByRankDescending(serverRoles map[ID]Role, memberRoles []ID) []Override {
	type ranked struct {
		rank int
		ov   Override
	}
	var rs []ranked
	for _, rid := range memberRoles {
		role, ok := serverRoles[rid]
		if !ok {
			continue
		}
		rs = append(rs, ranked{rank: role.Rank, ov: role.Permissions})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].rank > rs[j].rank })
	out := make([]Override, len(rs))
	for i, r := range rs {
		out[i] = r.ov
	}
	return out
}

// channelRolesByRankDescending mirrors rolesByRankDescending but sources
// the Override from a channel's per-role override map instead of the
// role's own base permissions, restricted to roles the member actually
// holds.
func channelRolesByRankDescending(serverRoles map[ID]Role, channelRoles map[ID]Override, memberRoles []ID) []Override {
	if len(channelRoles) == 0 {
		return nil
	}
	type ranked struct {
		rank int
		ov   Override
	}
	var rs []ranked
	for rid, ov := range channelRoles {
		if !memberHasRole(memberRoles, rid) {
			continue
		}
		role, ok := serverRoles[rid]
		if !ok {
			continue
		}
		rs = append(rs, ranked{rank: role.Rank, ov: ov})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].rank > rs[j].rank })
	out := make([]Override, len(rs))
	for i, r := range rs {
		out[i] = r.ov
	}
	return out
}

func memberHasRole(roles []ID, id ID) bool {
	for _, r := range roles {
		if r == id {
			return true
		}
	}
	return false
}
