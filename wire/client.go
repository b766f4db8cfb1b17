// Package wire implements the client/server message codec: the
// discriminated unions exchanged over the gateway stream, and their
// binary (msgpack) and text (JSON) framings (spec §4.A).
package wire

import "encoding/json"

// PingData is either a bare number or a raw byte payload, matching the
// client.rs PingData union the original wire format carries.
type PingData struct {
	Number *int64
	Binary []byte
}

func (p PingData) MarshalJSON() ([]byte, error) {
	if p.Binary != nil {
		return json.Marshal(p.Binary)
	}
	n := int64(0)
	if p.Number != nil {
		n = *p.Number
	}
	return json.Marshal(n)
}

func (p *PingData) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		p.Number = &n
		return nil
	}
	var raw []byte
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Binary = raw
	return nil
}

// ClientMessage is the closed union of messages the client may send.
type ClientMessage struct {
	Type string `json:"type" msgpack:"type"`

	// Authenticate
	Token string `json:"token,omitempty" msgpack:"token,omitempty"`

	// BeginTyping, EndTyping
	Channel string `json:"channel,omitempty" msgpack:"channel,omitempty"`

	// Ping
	Data      *PingData `json:"data,omitempty" msgpack:"data,omitempty"`
	Responded *bool     `json:"responded,omitempty" msgpack:"responded,omitempty"`
}

// Authenticate builds an Authenticate client message.
func Authenticate(token string) ClientMessage {
	return ClientMessage{Type: "Authenticate", Token: token}
}

// BeginTyping builds a BeginTyping client message for channelID.
func BeginTyping(channelID string) ClientMessage {
	return ClientMessage{Type: "BeginTyping", Channel: channelID}
}

// EndTyping builds an EndTyping client message for channelID.
func EndTyping(channelID string) ClientMessage {
	return ClientMessage{Type: "EndTyping", Channel: channelID}
}

// Ping builds a Ping{data, responded: nil} client message carrying a
// numeric sequence value, matching the heartbeat frame the gateway
// session emits (spec §4.D).
func Ping(seq int64) ClientMessage {
	return ClientMessage{Type: "Ping", Data: &PingData{Number: &seq}}
}
