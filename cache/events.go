package cache

import (
	"github.com/stoat-chat/stoatgo"
	"github.com/stoat-chat/stoatgo/wire"
)

// Apply mutates the cache according to msg, per the event-application
// rules of spec §4.E. Bulk is expanded recursively, in order. Apply is
// not safe to call concurrently with itself; callers serialize event
// application on a single goroutine (typically the gateway dispatch
// loop) while reads may run concurrently.
func (c *Cache) Apply(msg wire.ServerMessage) {
	switch m := msg.(type) {
	case wire.Bulk:
		for _, inner := range m.V {
			c.Apply(inner)
		}

	case wire.Ready:
		c.applyReady(m)

	case wire.Message:
		c.applyMessage(m)
	case wire.MessageUpdate:
		c.applyMessageUpdate(m)
	case wire.MessageAppend:
		c.applyMessageAppend(m)
	case wire.MessageReact:
		if msg, ok := c.messages.GetIfPresent(stoat.ID(m.ID)); ok {
			msg.React(stoat.ID(m.EmojiID), stoat.ID(m.UserID))
		}
	case wire.MessageUnreact:
		if msg, ok := c.messages.GetIfPresent(stoat.ID(m.ID)); ok {
			msg.Unreact(stoat.ID(m.EmojiID), stoat.ID(m.UserID))
		}
	case wire.MessageRemoveReaction:
		if msg, ok := c.messages.GetIfPresent(stoat.ID(m.ID)); ok {
			msg.RemoveReaction(stoat.ID(m.EmojiID))
		}
	case wire.MessageDelete:
		c.messages.Invalidate(stoat.ID(m.ID))
	case wire.BulkMessageDelete:
		for _, id := range m.IDs {
			c.messages.Invalidate(stoat.ID(id))
		}

	case wire.ChannelCreate:
		c.applyChannelCreate(m)
	case wire.ChannelUpdate:
		c.applyChannelUpdate(m)
	case wire.ChannelDelete:
		c.applyChannelDelete(m)
	case wire.ChannelGroupJoin:
		c.mutateChannel(stoat.ID(m.ID), func(ch *stoat.Channel) {
			ch.Recipients = append(ch.Recipients, stoat.ID(m.User))
		})
	case wire.ChannelGroupLeave:
		c.mutateChannel(stoat.ID(m.ID), func(ch *stoat.Channel) {
			out := ch.Recipients[:0]
			for _, r := range ch.Recipients {
				if r != stoat.ID(m.User) {
					out = append(out, r)
				}
			}
			ch.Recipients = out
		})

	case wire.ServerCreate:
		c.applyServerCreate(m)
	case wire.ServerUpdate:
		c.applyServerUpdate(m)
	case wire.ServerDelete:
		c.applyServerDelete(stoat.ID(m.ID))

	case wire.ServerMemberUpdate:
		c.applyMemberUpdate(m)
	case wire.ServerMemberLeave:
		c.applyMemberLeave(m)

	case wire.ServerRoleUpdate:
		c.applyRoleUpdate(m)
	case wire.ServerRoleDelete:
		c.applyRoleDelete(m)
	case wire.ServerRoleRanksUpdate:
		c.applyRoleRanksUpdate(m)

	case wire.UserUpdate:
		c.applyUserUpdate(m)

	case wire.EmojiCreate:
		e := m.Emoji
		c.mu.Lock()
		c.emojis[e.ID] = &e
		c.mu.Unlock()
	case wire.EmojiDelete:
		c.mu.Lock()
		delete(c.emojis, stoat.ID(m.ID))
		c.mu.Unlock()

	// VoiceChannel*, typing, ack, settings, Auth, Pong, relationship,
	// platform-wipe, webhook events: no cache mutation (spec §4.E).
	// Relationship/platform-wipe would touch the users LRU which is a
	// fetch cache keyed by id, not a source of truth for relation state,
	// so they are intentionally left to user-level handlers.
	default:
	}
}

func (c *Cache) applyReady(r wire.Ready) {
	c.mu.Lock()
	c.servers = make(map[stoat.ID]*stoat.Server, len(r.Servers))
	for i := range r.Servers {
		s := r.Servers[i]
		c.servers[s.ID] = &s
	}
	c.channels = make(map[stoat.ID]*stoat.Channel, len(r.Channels))
	c.userDMs = make(map[stoat.ID]stoat.ID)
	for i := range r.Channels {
		ch := r.Channels[i]
		c.channels[ch.ID] = &ch
	}
	c.emojis = make(map[stoat.ID]*stoat.Emoji, len(r.Emojis))
	for i := range r.Emojis {
		e := r.Emojis[i]
		c.emojis[e.ID] = &e
	}
	c.members = make(map[stoat.ID]*MemberCache)
	c.mu.Unlock()

	for i := range r.Members {
		mb := r.Members[i]
		mc, err := c.memberCache(mb.Key.Server)
		if err != nil {
			continue
		}
		mc.Set(&mb)
	}

	for i := range r.Users {
		u := r.Users[i]
		c.users.Set(u.ID, &u)
		if u.Relationship == stoat.RelationshipUser {
			c.Self.install(u.ID)
		}
	}

	c.mu.Lock()
	for id, ch := range c.channels {
		if ch.Kind == stoat.ChannelDirectMessage {
			if other, ok := ch.OtherRecipient(c.Self.ID()); ok {
				c.userDMs[other] = id
			}
		}
	}
	c.mu.Unlock()
}

func (c *Cache) applyMessage(m wire.Message) {
	msg := m.Message
	c.messages.Set(msg.ID, &msg)
	c.mutateChannel(msg.ChannelID, func(ch *stoat.Channel) {
		if ch.HasLastMessage() {
			id := msg.ID
			ch.LastMessageID = &id
		}
	})
}

func (c *Cache) applyMessageUpdate(m wire.MessageUpdate) {
	msg, ok := c.messages.GetIfPresent(stoat.ID(m.ID))
	if !ok {
		return
	}
	if m.Data.Content != nil {
		msg.Content = m.Data.Content
	}
	if m.Data.Embeds != nil {
		msg.Embeds = m.Data.Embeds
	}
	for _, field := range m.Clear {
		if field == "Content" {
			msg.Content = nil
		}
	}
}

func (c *Cache) applyMessageAppend(m wire.MessageAppend) {
	msg, ok := c.messages.GetIfPresent(stoat.ID(m.ID))
	if !ok {
		return
	}
	msg.Embeds = append(msg.Embeds, m.Append.Embeds...)
}

func (c *Cache) applyChannelCreate(m wire.ChannelCreate) {
	ch := m.Channel
	c.mu.Lock()
	c.channels[ch.ID] = &ch
	if ch.Kind == stoat.ChannelDirectMessage {
		if other, ok := ch.OtherRecipient(c.Self.ID()); ok {
			c.userDMs[other] = ch.ID
		}
	}
	c.mu.Unlock()
}

func (c *Cache) applyChannelUpdate(m wire.ChannelUpdate) {
	c.mutateChannel(stoat.ID(m.ID), func(ch *stoat.Channel) {
		d := m.Data
		if d.Name != nil {
			ch.Name = *d.Name
		}
		if d.Description != nil {
			ch.Description = d.Description
		}
		if d.Icon != nil {
			ch.Icon = d.Icon
		}
		if d.DefaultPermissions != nil {
			ch.DefaultPermissions = d.DefaultPermissions
		}
		if d.RolePermissions != nil {
			ch.RolePermissions = d.RolePermissions
		}
		for _, field := range m.Clear {
			if field == "Icon" {
				ch.Icon = nil
			}
		}
	})
}

func (c *Cache) applyChannelDelete(m wire.ChannelDelete) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := stoat.ID(m.ID)
	if ch, ok := c.channels[id]; ok && ch.Kind == stoat.ChannelDirectMessage {
		if other, ok := ch.OtherRecipient(c.Self.ID()); ok {
			delete(c.userDMs, other)
		}
	}
	delete(c.channels, id)
}

func (c *Cache) mutateChannel(id stoat.ID, fn func(*stoat.Channel)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.channels[id]; ok {
		fn(ch)
	}
}

func (c *Cache) applyServerCreate(m wire.ServerCreate) {
	s := m.Server
	c.mu.Lock()
	c.servers[s.ID] = &s
	for i := range m.Channels {
		ch := m.Channels[i]
		c.channels[ch.ID] = &ch
	}
	for i := range m.Emojis {
		e := m.Emojis[i]
		c.emojis[e.ID] = &e
	}
	c.mu.Unlock()

	if self := c.Self.ID(); self != "" {
		mc, err := c.memberCache(s.ID)
		if err == nil {
			mc.SeedSelf(s.ID, self)
		}
	}
}

func (c *Cache) applyServerUpdate(m wire.ServerUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.servers[stoat.ID(m.ID)]
	if !ok {
		return
	}
	d := m.Data
	if d.Name != nil {
		s.Name = *d.Name
	}
	if d.Description != nil {
		s.Description = d.Description
	}
	if d.Icon != nil {
		s.Icon = d.Icon
	}
	if d.Banner != nil {
		s.Banner = d.Banner
	}
	if d.DefaultPermissions != nil {
		s.DefaultPermissions = *d.DefaultPermissions
	}
	for _, field := range m.Clear {
		switch field {
		case "Icon":
			s.Icon = nil
		case "Banner":
			s.Banner = nil
		case "Description":
			s.Description = nil
		}
	}
}

// applyServerDelete removes a server and cascades to its channels,
// members, and emojis (spec §3, §4.E).
func (c *Cache) applyServerDelete(serverID stoat.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.servers[serverID]
	if ok {
		for _, chID := range s.Channels {
			delete(c.channels, chID)
		}
	}
	delete(c.servers, serverID)
	delete(c.members, serverID)
	for id, e := range c.emojis {
		if e.ServerID != nil && *e.ServerID == serverID {
			delete(c.emojis, id)
		}
	}
}

func (c *Cache) applyMemberUpdate(m wire.ServerMemberUpdate) {
	mc, err := c.memberCache(m.ID.Server)
	if err != nil {
		return
	}
	member, ok := mc.GetIfPresent(m.ID.User)
	if !ok {
		return
	}
	d := m.Data
	if d.Nickname != nil {
		member.Nickname = d.Nickname
	}
	if d.Avatar != nil {
		member.Avatar = d.Avatar
	}
	if d.Roles != nil {
		roles := make([]stoat.ID, len(d.Roles))
		for i, r := range d.Roles {
			roles[i] = stoat.ID(r)
		}
		member.Roles = roles
	}
	if d.Timeout != nil {
		member.Timeout = d.Timeout
	}
	for _, field := range m.Clear {
		switch field {
		case "Nickname":
			member.Nickname = nil
		case "Avatar":
			member.Avatar = nil
		case "Timeout":
			member.Timeout = nil
		}
	}
	mc.Set(member)
}

// applyMemberLeave handles ServerMemberLeave. If the leaver is the
// session user this is treated as ServerDelete of that server (spec
// §4.E); otherwise it invalidates just that member.
func (c *Cache) applyMemberLeave(m wire.ServerMemberLeave) {
	if stoat.ID(m.User) == c.Self.ID() {
		c.applyServerDelete(stoat.ID(m.ID))
		return
	}
	mc, err := c.memberCache(stoat.ID(m.ID))
	if err != nil {
		return
	}
	mc.Invalidate(stoat.ID(m.User))
}

// applyRoleUpdate upserts a role (spec §4.E: role updates use upsert
// semantics).
func (c *Cache) applyRoleUpdate(m wire.ServerRoleUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.servers[stoat.ID(m.ID)]
	if !ok {
		return
	}
	if s.Roles == nil {
		s.Roles = make(map[stoat.ID]stoat.Role)
	}
	role := s.Roles[stoat.ID(m.RoleID)]
	d := m.Data
	if d.Name != nil {
		role.Name = *d.Name
	}
	if d.Permissions != nil {
		role.Permissions = *d.Permissions
	}
	if d.Colour != nil {
		role.Colour = d.Colour
	}
	if d.Hoist != nil {
		role.Hoist = *d.Hoist
	}
	if d.Rank != nil {
		role.Rank = *d.Rank
	}
	for _, field := range m.Clear {
		if field == "Colour" {
			role.Colour = nil
		}
	}
	s.Roles[stoat.ID(m.RoleID)] = role
}

// applyRoleDelete removes a role and its id from every cached member's
// role set (spec §4.E).
func (c *Cache) applyRoleDelete(m wire.ServerRoleDelete) {
	c.mu.Lock()
	s, ok := c.servers[stoat.ID(m.ID)]
	if ok && s.Roles != nil {
		delete(s.Roles, stoat.ID(m.RoleID))
	}
	mc := c.members[stoat.ID(m.ID)]
	c.mu.Unlock()

	if mc != nil {
		mc.RemoveRole(stoat.ID(m.RoleID))
	}
}

func (c *Cache) applyRoleRanksUpdate(m wire.ServerRoleRanksUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.servers[stoat.ID(m.ID)]
	if !ok || s.Roles == nil {
		return
	}
	for roleID, rank := range m.Ranks {
		role := s.Roles[stoat.ID(roleID)]
		role.Rank = rank
		s.Roles[stoat.ID(roleID)] = role
	}
}

func (c *Cache) applyUserUpdate(m wire.UserUpdate) {
	u, ok := c.users.GetIfPresent(stoat.ID(m.ID))
	if !ok {
		return
	}
	d := m.Data
	if d.DisplayName != nil {
		u.DisplayName = d.DisplayName
	}
	if d.Avatar != nil {
		u.Avatar = d.Avatar
	}
	if d.Status != nil {
		u.Status = d.Status
	}
	if d.Profile != nil {
		u.Profile = d.Profile
	}
	if d.Online != nil {
		u.Online = *d.Online
	}
	if d.Flags != nil {
		u.Flags = *d.Flags
	}
	for _, field := range m.Clear {
		switch field {
		case "DisplayName":
			u.DisplayName = nil
		case "Avatar":
			u.Avatar = nil
		case "Status":
			u.Status = nil
		case "Profile":
			u.Profile = nil
		}
	}
	c.users.Set(u.ID, u)
}
