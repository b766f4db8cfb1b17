package cache

import (
	"time"

	"github.com/stoat-chat/stoatgo"
)

// MemberPermissions computes a cached member's effective server
// permissions, using the cached server and member. Returns 0 if either
// is not cached.
func (c *Cache) MemberPermissions(key stoat.MemberKey) stoat.Permissions {
	server, ok := c.Server(key.Server)
	if !ok {
		return 0
	}
	member, ok := c.MemberIfPresent(key)
	if !ok {
		return 0
	}
	return stoat.ServerPermissions(server, member, time.Now())
}

// ChannelPermissions computes userID's effective permissions in a cached
// channel, resolving the owning server and member from the cache when
// the channel variant needs them.
func (c *Cache) ChannelPermissions(channelID, userID stoat.ID) stoat.Permissions {
	channel, ok := c.Channel(channelID)
	if !ok {
		return 0
	}
	if !channel.HasServer() {
		return stoat.ChannelPermissions(channel, userID, nil, nil, time.Now())
	}
	server, ok := c.Server(channel.ServerID)
	if !ok {
		return 0
	}
	member, ok := c.MemberIfPresent(stoat.MemberKey{Server: channel.ServerID, User: userID})
	if !ok {
		return 0
	}
	return stoat.ChannelPermissions(channel, userID, server, member, time.Now())
}
