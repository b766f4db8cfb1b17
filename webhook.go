package stoat

// Webhook is an incoming webhook attached to a channel. Webhooks are not
// cached by default (spec §4.E); this type exists so WebhookCreate/Update
// /Delete events can be decoded and handed to user code.
type Webhook struct {
	ID        ID      `json:"_id"`
	Name      string  `json:"name"`
	Avatar    *File   `json:"avatar,omitempty"`
	ChannelID ID      `json:"channel_id"`
}
