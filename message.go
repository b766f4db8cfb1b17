package stoat

// Attachment is a file attached to a message.
type Attachment = File

// Embed is an opaque, server-shaped embed payload. The embed taxonomy is
// mechanical (website/image/text/none) and out of scope for the core
// (spec §1). Only the type tag is decoded; the rest of the payload is
// dropped, and JSON decoding leaves Raw empty.
type Embed struct {
	Type string `json:"type"`
	Raw  []byte `json:"-"`
}

// MessageReply references a prior message being replied to.
type MessageReply struct {
	ID      ID   `json:"id"`
	Mention bool `json:"mention"`
}

// Masquerade overrides the displayed author of a message.
type Masquerade struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Colour *string `json:"colour,omitempty"`
}

// Interactions describes the reaction/interaction affordances a message
// offers (restrict-to-list of emoji, allow-all toggle).
type Interactions struct {
	Reactions        []string `json:"reactions,omitempty"`
	RestrictReactions bool    `json:"restrict_reactions,omitempty"`
}

// Message is a single chat message.
type Message struct {
	ID         ID               `json:"_id"`
	ChannelID  ID               `json:"channel"`
	AuthorID   ID               `json:"author"`
	Content    *string          `json:"content,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty"`
	Embeds     []Embed          `json:"embeds,omitempty"`
	Replies    []MessageReply   `json:"replies,omitempty"`
	Reactions  map[ID][]ID      `json:"reactions,omitempty"` // emoji-id -> ordered user-ids
	Masquerade *Masquerade      `json:"masquerade,omitempty"`
	Interactions *Interactions  `json:"interactions,omitempty"`
	Webhook    *struct {
		ID   ID     `json:"id"`
		Name string `json:"name"`
	} `json:"webhook,omitempty"`
}

// React adds userID to the ordered reaction set for emojiID, if not
// already present.
func (m *Message) React(emojiID, userID ID) {
	if m.Reactions == nil {
		m.Reactions = make(map[ID][]ID)
	}
	users := m.Reactions[emojiID]
	for _, u := range users {
		if u == userID {
			return
		}
	}
	m.Reactions[emojiID] = append(users, userID)
}

// Unreact removes userID from emojiID's reaction set, deleting the set
// entirely once it is empty (spec §4.E).
func (m *Message) Unreact(emojiID, userID ID) {
	users, ok := m.Reactions[emojiID]
	if !ok {
		return
	}
	out := users[:0]
	for _, u := range users {
		if u != userID {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		delete(m.Reactions, emojiID)
		return
	}
	m.Reactions[emojiID] = out
}

// RemoveReaction deletes an entire emoji's reaction set.
func (m *Message) RemoveReaction(emojiID ID) {
	delete(m.Reactions, emojiID)
}

// Clone returns a copy safe to mutate without affecting the cached entity.
func (m *Message) Clone() *Message {
	cp := *m
	if m.Attachments != nil {
		cp.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	if m.Embeds != nil {
		cp.Embeds = append([]Embed(nil), m.Embeds...)
	}
	if m.Replies != nil {
		cp.Replies = append([]MessageReply(nil), m.Replies...)
	}
	if m.Reactions != nil {
		cp.Reactions = make(map[ID][]ID, len(m.Reactions))
		for k, v := range m.Reactions {
			cp.Reactions[k] = append([]ID(nil), v...)
		}
	}
	return &cp
}
