package stoat

// Presence is the user-chosen status tag.
type Presence string

const (
	PresenceOnline    Presence = "Online"
	PresenceIdle      Presence = "Idle"
	PresenceFocus     Presence = "Focus"
	PresenceBusy      Presence = "Busy"
	PresenceInvisible Presence = "Invisible"
)

// Relationship is the caller's relationship to another user.
type Relationship string

const (
	RelationshipNone            Relationship = "None"
	RelationshipUser            Relationship = "User" // the session user's own relationship to itself
	RelationshipFriend          Relationship = "Friend"
	RelationshipOutgoing        Relationship = "Outgoing"
	RelationshipIncoming        Relationship = "Incoming"
	RelationshipBlocked         Relationship = "Blocked"
	RelationshipBlockedOther    Relationship = "BlockedOther"
)

// File is a reference to an uploaded attachment, avatar, banner, icon, or
// background hosted on the CDN.
type File struct {
	ID          ID     `json:"_id"`
	Tag         string `json:"tag"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// UserStatus is the optional status text plus presence tag.
type UserStatus struct {
	Text     *string  `json:"text,omitempty"`
	Presence Presence `json:"presence,omitempty"`
}

// UserProfile is the optional profile content and background image.
type UserProfile struct {
	Content    *string `json:"content,omitempty"`
	Background *File   `json:"background,omitempty"`
}

// BotInfo is present only for bot users.
type BotInfo struct {
	Owner ID `json:"owner"`
}

// User is a platform identity.
type User struct {
	ID            ID                      `json:"_id"`
	Username      string                  `json:"username"`
	Discriminator string                  `json:"discriminator"`
	DisplayName   *string                 `json:"display_name,omitempty"`
	Avatar        *File                   `json:"avatar,omitempty"`
	Relations     map[ID]Relationship     `json:"relations,omitempty"`
	// Relationship is the viewer's relationship to this user. On the
	// session user's own entry in a Ready snapshot this is RelationshipUser,
	// which is how the cache identifies the session user (spec §4.E).
	Relationship  Relationship            `json:"relationship,omitempty"`
	Badges        uint32                  `json:"badges,omitempty"`
	Flags         uint32                  `json:"flags,omitempty"`
	Status        *UserStatus             `json:"status,omitempty"`
	Profile       *UserProfile            `json:"profile,omitempty"`
	Online        bool                    `json:"online"`
	Bot           *BotInfo                `json:"bot,omitempty"`
}

// Clone returns a copy whose Relations map is its own, safe to mutate
// without affecting the original. The cache's accessors return their
// stored pointers, not clones.
func (u *User) Clone() *User {
	cp := *u
	if u.Relations != nil {
		cp.Relations = make(map[ID]Relationship, len(u.Relations))
		for k, v := range u.Relations {
			cp.Relations[k] = v
		}
	}
	return &cp
}
