package stoat

import "time"

// Member is a server member: a user plus per-server identity (nickname,
// avatar, roles, timeout). Identified by the composite MemberKey.
type Member struct {
	Key      MemberKey  `json:"_id"`
	JoinedAt time.Time  `json:"joined_at"`
	Nickname *string    `json:"nickname,omitempty"`
	Avatar   *File      `json:"avatar,omitempty"`
	Roles    []ID       `json:"roles,omitempty"`
	Timeout  *time.Time `json:"timeout,omitempty"`
}

// InTimeout reports whether the member is currently restricted: a timeout
// is set and lies in the future.
func (m *Member) InTimeout(now time.Time) bool {
	return m.Timeout != nil && m.Timeout.After(now)
}

// HasRole reports whether the member holds roleID.
func (m *Member) HasRole(roleID ID) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// RemoveRole deletes roleID from the member's role set, in place. Used by
// ServerRoleDelete cascade (spec §4.E).
func (m *Member) RemoveRole(roleID ID) {
	out := m.Roles[:0]
	for _, r := range m.Roles {
		if r != roleID {
			out = append(out, r)
		}
	}
	m.Roles = out
}

// Clone returns a copy safe to mutate without affecting the cached entity.
func (m *Member) Clone() *Member {
	cp := *m
	cp.Roles = append([]ID(nil), m.Roles...)
	return &cp
}

// Emoji is a custom emoji, either attached to a server or detached
// (uploaded standalone).
type Emoji struct {
	ID        ID      `json:"_id"`
	ServerID  *ID     `json:"parent,omitempty"` // nil => Detached
	CreatorID ID      `json:"creator_id"`
	Name      string  `json:"name"`
	Animated  bool    `json:"animated"`
	NSFW      bool    `json:"nsfw"`
}

// Detached reports whether the emoji has no parent server.
func (e *Emoji) Detached() bool { return e.ServerID == nil }
