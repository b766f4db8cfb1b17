package wire

import (
	"time"

	"github.com/stoat-chat/stoatgo"
)

// ServerMessage is the closed union of events the server may send. Every
// concrete event type below implements it; Kind returns the wire "type"
// tag. Bulk is expanded by the dispatcher, not the gateway session
// (spec §4.D).
type ServerMessage interface {
	Kind() string
}

type kind string

func (k kind) Kind() string { return string(k) }

// Bulk carries a nested sequence of further events, applied in order.
type Bulk struct {
	kind
	V []ServerMessage `json:"v"`
}

// Authenticated acknowledges a successful Authenticate handshake.
type Authenticated struct{ kind }

// Ready is the initial state snapshot.
type Ready struct {
	kind
	Users    []stoat.User    `json:"users"`
	Servers  []stoat.Server  `json:"servers"`
	Channels []stoat.Channel `json:"channels"`
	Members  []stoat.Member  `json:"members"`
	Emojis   []stoat.Emoji   `json:"emojis"`
}

// Pong answers a client Ping.
type Pong struct {
	kind
	Data PingData `json:"data"`
}

// Message is a new chat message.
type Message struct {
	kind
	stoat.Message
}

// MessageUpdate carries a partial patch (Data) and a list of fields to
// clear (Clear), applied in that order.
type MessageUpdate struct {
	kind
	ID      string            `json:"id"`
	Channel string            `json:"channel"`
	Data    MessagePatch      `json:"data"`
	Clear   []string          `json:"clear,omitempty"`
}

// MessagePatch is the set of fields an update/append may carry. Pointer
// fields are only applied when non-nil.
type MessagePatch struct {
	Content *string          `json:"content,omitempty"`
	Embeds  []stoat.Embed    `json:"embeds,omitempty"`
}

// MessageAppend merges additional embeds onto an existing message.
type MessageAppend struct {
	kind
	ID      string       `json:"id"`
	Channel string       `json:"channel"`
	Append  MessagePatch `json:"append"`
}

// MessageReact records a reaction addition.
type MessageReact struct {
	kind
	ID       string `json:"id"`
	ChannelID string `json:"channel_id"`
	UserID   string `json:"user_id"`
	EmojiID  string `json:"emoji_id"`
}

// MessageUnreact records removal of a single user's reaction.
type MessageUnreact struct {
	kind
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	EmojiID   string `json:"emoji_id"`
}

// MessageRemoveReaction clears an entire emoji's reaction set.
type MessageRemoveReaction struct {
	kind
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	EmojiID   string `json:"emoji_id"`
}

// MessageDelete invalidates a single cached message.
type MessageDelete struct {
	kind
	ID      string `json:"id"`
	Channel string `json:"channel"`
}

// BulkMessageDelete invalidates several cached messages at once.
type BulkMessageDelete struct {
	kind
	Channel string   `json:"channel"`
	IDs     []string `json:"ids"`
}

// ChannelCreate inserts a new channel.
type ChannelCreate struct {
	kind
	stoat.Channel
}

// ChannelUpdate patches an existing channel.
type ChannelUpdate struct {
	kind
	ID    string         `json:"id"`
	Data  ChannelPatch   `json:"data"`
	Clear []string       `json:"clear,omitempty"`
}

// ChannelPatch is the set of channel fields an update may carry.
type ChannelPatch struct {
	Name               *string                  `json:"name,omitempty"`
	Description        *string                  `json:"description,omitempty"`
	Icon               *stoat.File              `json:"icon,omitempty"`
	DefaultPermissions *stoat.Override          `json:"default_permissions,omitempty"`
	RolePermissions    map[stoat.ID]stoat.Override `json:"role_permissions,omitempty"`
}

// ChannelDelete removes a channel.
type ChannelDelete struct {
	kind
	ID string `json:"id"`
}

// ChannelGroupJoin records a user joining a group DM.
type ChannelGroupJoin struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

// ChannelGroupLeave records a user leaving a group DM.
type ChannelGroupLeave struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

// ChannelStartTyping signals ephemeral typing indicator start.
type ChannelStartTyping struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

// ChannelStopTyping signals ephemeral typing indicator stop.
type ChannelStopTyping struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

// ChannelAck acknowledges read state up to a message.
type ChannelAck struct {
	kind
	ID        string `json:"id"`
	User      string `json:"user"`
	MessageID string `json:"message_id"`
}

// ServerCreate inserts a new server along with its channels and emojis.
type ServerCreate struct {
	kind
	Server   stoat.Server    `json:"server"`
	Channels []stoat.Channel `json:"channels"`
	Emojis   []stoat.Emoji   `json:"emojis,omitempty"`
}

// ServerUpdate patches an existing server.
type ServerUpdate struct {
	kind
	ID    string       `json:"id"`
	Data  ServerPatch  `json:"data"`
	Clear []string     `json:"clear,omitempty"`
}

// ServerPatch is the set of server fields an update may carry.
type ServerPatch struct {
	Name               *string     `json:"name,omitempty"`
	Description        *string     `json:"description,omitempty"`
	Icon               *stoat.File `json:"icon,omitempty"`
	Banner             *stoat.File `json:"banner,omitempty"`
	DefaultPermissions *stoat.Permissions `json:"default_permissions,omitempty"`
}

// ServerDelete removes a server, cascading to its channels, members, and
// emojis (spec §3).
type ServerDelete struct {
	kind
	ID string `json:"id"`
}

// ServerMemberUpdate patches an existing member.
type ServerMemberUpdate struct {
	kind
	ID    stoat.MemberKey `json:"id"`
	Data  MemberPatch     `json:"data"`
	Clear []string        `json:"clear,omitempty"`
}

// MemberPatch is the set of member fields an update may carry.
type MemberPatch struct {
	Nickname *string    `json:"nickname,omitempty"`
	Avatar   *stoat.File `json:"avatar,omitempty"`
	Roles    []string   `json:"roles,omitempty"`
	Timeout  *time.Time `json:"timeout,omitempty"`
}

// ServerMemberJoin records a user joining a server.
type ServerMemberJoin struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

// ServerMemberLeave records a user leaving (or being kicked/banned from)
// a server. If the leaver is the session user this is treated as
// ServerDelete (spec §4.E).
type ServerMemberLeave struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

// ServerRoleUpdate upserts a role (creates if absent).
type ServerRoleUpdate struct {
	kind
	ID     string      `json:"id"`
	RoleID string      `json:"role_id"`
	Data   RolePatch   `json:"data"`
	Clear  []string    `json:"clear,omitempty"`
}

// RolePatch is the set of role fields an upsert may carry.
type RolePatch struct {
	Name        *string          `json:"name,omitempty"`
	Permissions *stoat.Override  `json:"permissions,omitempty"`
	Colour      *string          `json:"colour,omitempty"`
	Hoist       *bool            `json:"hoist,omitempty"`
	Rank        *int             `json:"rank,omitempty"`
}

// ServerRoleDelete removes a role, and its id from every member's role
// set (spec §4.E).
type ServerRoleDelete struct {
	kind
	ID     string `json:"id"`
	RoleID string `json:"role_id"`
}

// ServerRoleRanksUpdate bulk-updates the rank of several roles at once.
// Present only in the newer wire schema (spec §9 open question).
type ServerRoleRanksUpdate struct {
	kind
	ID    string         `json:"id"`
	Ranks map[string]int `json:"ranks"`
}

// UserUpdate patches an existing cached user, the session user's entry
// included; the cache's session-user id and mention never change.
type UserUpdate struct {
	kind
	ID    string      `json:"id"`
	Data  UserPatch   `json:"data"`
	Clear []string    `json:"clear,omitempty"`
}

// UserPatch is the set of user fields an update may carry.
type UserPatch struct {
	DisplayName *string           `json:"display_name,omitempty"`
	Avatar      *stoat.File       `json:"avatar,omitempty"`
	Status      *stoat.UserStatus `json:"status,omitempty"`
	Profile     *stoat.UserProfile `json:"profile,omitempty"`
	Online      *bool             `json:"online,omitempty"`
	Flags       *uint32           `json:"flags,omitempty"`
}

// UserRelationship records a change in relationship with another user.
// Carries a deprecated Status field in the older wire schema (spec §9).
type UserRelationship struct {
	kind
	ID           string              `json:"id"`
	User         string              `json:"user"`
	Relationship stoat.Relationship  `json:"status"`
}

// UserSettingsUpdate carries opaque client settings; no cache mutation.
type UserSettingsUpdate struct {
	kind
	ID  string            `json:"id"`
	Update map[string][2]string `json:"update"`
}

// UserPlatformWipe signals that a user's data has been wiped platform-wide.
type UserPlatformWipe struct {
	kind
	UserID string `json:"user_id"`
	Flags  uint32 `json:"flags"`
}

// EmojiCreate inserts a new emoji.
type EmojiCreate struct {
	kind
	stoat.Emoji
}

// EmojiDelete removes an emoji.
type EmojiDelete struct {
	kind
	ID string `json:"id"`
}

// WebhookCreate inserts a webhook (not cached by default).
type WebhookCreate struct {
	kind
	stoat.Webhook
}

// WebhookUpdate patches a webhook.
type WebhookUpdate struct {
	kind
	ID   string `json:"id"`
	Data struct {
		Name   *string     `json:"name,omitempty"`
		Avatar *stoat.File `json:"avatar,omitempty"`
	} `json:"data"`
}

// WebhookDelete removes a webhook.
type WebhookDelete struct {
	kind
	ID string `json:"id"`
}

// VoiceChannelJoin, VoiceChannelLeave, VoiceChannelMove, UserVoiceStateUpdate,
// UserMoveVoiceChannel carry no cache mutation (spec §4.E); present in the
// richer of the two wire schemas (spec §9).
type VoiceChannelJoin struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

type VoiceChannelLeave struct {
	kind
	ID   string `json:"id"`
	User string `json:"user"`
}

type VoiceChannelMove struct {
	kind
	ID     string `json:"id"`
	User   string `json:"user"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type UserVoiceStateUpdate struct {
	kind
	ID   string `json:"id"`
	Data map[string]any `json:"data"`
}

type UserMoveVoiceChannel struct {
	kind
	User string `json:"user"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Auth is an out-of-band authentication state notice (e.g. session
// revoked elsewhere); no cache mutation.
type Auth struct {
	kind
	EventType string `json:"event_type"`
}

// Unknown wraps an unrecognised "type" tag so the codec can accept
// newer-schema events without hard-failing (spec §9 open question).
type Unknown struct {
	kind
	Raw []byte `json:"-"`
}
