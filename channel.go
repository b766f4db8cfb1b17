package stoat

// ChannelKind discriminates the Channel tagged union.
type ChannelKind string

const (
	ChannelSavedMessages ChannelKind = "SavedMessages"
	ChannelDirectMessage ChannelKind = "DirectMessage"
	ChannelGroup         ChannelKind = "Group"
	ChannelText          ChannelKind = "TextChannel"
	ChannelVoice         ChannelKind = "VoiceChannel"
)

// Channel is a closed tagged union over the five channel variants. Only
// the fields relevant to Kind are populated; accessor methods below
// encode the "match on tag" behaviour spec §9 calls for instead of a type
// hierarchy.
type Channel struct {
	ID   ID          `json:"_id"`
	Kind ChannelKind `json:"channel_type"`

	// SavedMessages only.
	User ID `json:"user,omitempty"`

	// DirectMessage, Group, TextChannel, VoiceChannel.
	Name string `json:"name,omitempty"`

	// DirectMessage, Group.
	Active     bool `json:"active,omitempty"`
	Recipients []ID `json:"recipients,omitempty"`

	// Group only.
	Owner       ID          `json:"owner,omitempty"`
	Description *string     `json:"description,omitempty"`
	GroupPerms  *Permissions `json:"permissions,omitempty"`

	// TextChannel, VoiceChannel.
	ServerID ID `json:"server,omitempty"`

	// TextChannel, Group, DirectMessage.
	LastMessageID *ID `json:"last_message_id,omitempty"`

	// TextChannel, VoiceChannel.
	DefaultPermissions *Override           `json:"default_permissions,omitempty"`
	RolePermissions    map[ID]Override     `json:"role_permissions,omitempty"`

	Icon *File `json:"icon,omitempty"`
	NSFW bool  `json:"nsfw,omitempty"`
}

// HasServer reports whether this variant carries a server_id (TextChannel,
// VoiceChannel).
func (c *Channel) HasServer() bool {
	return c.Kind == ChannelText || c.Kind == ChannelVoice
}

// HasLastMessage reports whether this variant tracks last_message_id
// (TextChannel, Group, DirectMessage).
func (c *Channel) HasLastMessage() bool {
	return c.Kind == ChannelText || c.Kind == ChannelGroup || c.Kind == ChannelDirectMessage
}

// Recipient reports whether userID is a party to this DM or Group.
func (c *Channel) Recipient(userID ID) bool {
	for _, r := range c.Recipients {
		if r == userID {
			return true
		}
	}
	return false
}

// OtherRecipient returns the counterpart of a DirectMessage, i.e. the
// recipient that is not self.
func (c *Channel) OtherRecipient(self ID) (ID, bool) {
	if c.Kind != ChannelDirectMessage {
		return "", false
	}
	for _, r := range c.Recipients {
		if r != self {
			return r, true
		}
	}
	return "", false
}

// Clone returns a copy safe to mutate without affecting the cached entity.
func (c *Channel) Clone() *Channel {
	cp := *c
	cp.Recipients = append([]ID(nil), c.Recipients...)
	if c.RolePermissions != nil {
		cp.RolePermissions = make(map[ID]Override, len(c.RolePermissions))
		for k, v := range c.RolePermissions {
			cp.RolePermissions[k] = v
		}
	}
	return &cp
}
