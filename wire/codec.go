package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"
	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the gateway's query-string framing: a binary msgpack
// stream (preferred for density) or a text JSON stream (spec §4.A).
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// maxBulkDepth bounds Bulk-in-Bulk recursion. The original implementation
// flattens Bulk without a depth guard; this is a defensive addition for
// untrusted wire input (SPEC_FULL.md §12), not a behaviour change.
const maxBulkDepth = 32

// errBulkTooDeep rejects the whole frame once Bulk nesting passes
// maxBulkDepth; unlike other undecodable members it is not dropped.
var errBulkTooDeep = fmt.Errorf("wire: bulk nesting exceeds %d", maxBulkDepth)

// Codec encodes outgoing ClientMessages and decodes incoming
// ServerMessages for one framing.
type Codec struct {
	format Format
	logger *slog.Logger
}

// New returns a Codec for the given format. A nil logger defaults to
// slog.Default().
func New(format Format, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{format: format, logger: logger}
}

// Format reports which framing this codec speaks.
func (c *Codec) Format() Format { return c.format }

// EncodeClient serialises a ClientMessage into a single outgoing frame.
func (c *Codec) EncodeClient(msg ClientMessage) ([]byte, error) {
	switch c.format {
	case FormatMsgpack:
		return msgpack.Marshal(msg)
	default:
		return json.Marshal(msg)
	}
}

// DecodeServer decodes a single incoming frame into a ServerMessage. On
// malformed input it returns an error; the gateway session is expected to
// log and loop rather than propagate this to the event consumer
// (spec §4.A, §7). Unrecognised "type" tags decode to Unknown rather than
// failing, per the §9 open question about accepting both wire schemas.
func (c *Codec) DecodeServer(frame []byte) (ServerMessage, error) {
	return c.decode(frame, 0)
}

func (c *Codec) decode(frame []byte, depth int) (ServerMessage, error) {
	if depth > maxBulkDepth {
		c.logger.Warn("wire: bulk nesting exceeded depth cap, dropping", "depth", depth)
		return nil, errBulkTooDeep
	}

	raw, tag, err := c.normalize(frame)
	if err != nil {
		return nil, fmt.Errorf("wire: decode frame: %w", err)
	}

	if tag == "Bulk" {
		var env struct {
			V []json.RawMessage `json:"v"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("wire: decode bulk envelope: %w", err)
		}
		b := Bulk{kind: kind("Bulk")}
		for _, item := range env.V {
			ev, err := c.decode(item, depth+1)
			if errors.Is(err, errBulkTooDeep) {
				return nil, err
			}
			if err != nil {
				c.logger.Warn("wire: dropping undecodable bulk member", "error", err)
				continue
			}
			b.V = append(b.V, ev)
		}
		return b, nil
	}

	ev, err := decodeTagged(raw, tag)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// decodeTagged unmarshals raw into the concrete struct for tag and
// returns it as a ServerMessage. Unrecognised tags decode to Unknown
// rather than failing, per the §9 open question about accepting both
// wire schemas.
func decodeTagged(raw []byte, tag string) (ServerMessage, error) {
	unmarshal := func(v any) error {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("wire: decode %s: %w", tag, err)
		}
		return nil
	}

	switch tag {
	case "Authenticated":
		return Authenticated{kind: kind(tag)}, nil
	case "Ready":
		var v Ready
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "Pong":
		var v Pong
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "Message":
		var v Message
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "MessageUpdate":
		var v MessageUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "MessageAppend":
		var v MessageAppend
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "MessageDelete":
		var v MessageDelete
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "MessageReact":
		var v MessageReact
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "MessageUnreact":
		var v MessageUnreact
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "MessageRemoveReaction":
		var v MessageRemoveReaction
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "BulkMessageDelete":
		var v BulkMessageDelete
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelCreate":
		var v ChannelCreate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelUpdate":
		var v ChannelUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelDelete":
		var v ChannelDelete
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelGroupJoin":
		var v ChannelGroupJoin
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelGroupLeave":
		var v ChannelGroupLeave
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelStartTyping":
		var v ChannelStartTyping
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelStopTyping":
		var v ChannelStopTyping
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ChannelAck":
		var v ChannelAck
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerCreate":
		var v ServerCreate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerUpdate":
		var v ServerUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerDelete":
		var v ServerDelete
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerMemberUpdate":
		var v ServerMemberUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerMemberJoin":
		var v ServerMemberJoin
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerMemberLeave":
		var v ServerMemberLeave
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerRoleUpdate":
		var v ServerRoleUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerRoleDelete":
		var v ServerRoleDelete
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "ServerRoleRanksUpdate":
		var v ServerRoleRanksUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "UserUpdate":
		var v UserUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "UserRelationship":
		var v UserRelationship
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "UserSettingsUpdate":
		var v UserSettingsUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "UserPlatformWipe":
		var v UserPlatformWipe
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "EmojiCreate":
		var v EmojiCreate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "EmojiDelete":
		var v EmojiDelete
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "WebhookCreate":
		var v WebhookCreate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "WebhookUpdate":
		var v WebhookUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "WebhookDelete":
		var v WebhookDelete
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "VoiceChannelJoin":
		var v VoiceChannelJoin
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "VoiceChannelLeave":
		var v VoiceChannelLeave
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "VoiceChannelMove":
		var v VoiceChannelMove
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "UserVoiceStateUpdate":
		var v UserVoiceStateUpdate
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "UserMoveVoiceChannel":
		var v UserMoveVoiceChannel
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	case "Auth":
		var v Auth
		if err := unmarshal(&v); err != nil {
			return nil, err
		}
		v.kind = kind(tag)
		return v, nil
	default:
		return Unknown{kind: kind(tag), Raw: raw}, nil
	}
}

// normalize returns frame as JSON bytes (re-encoding from msgpack when
// the codec is binary) along with its "type" tag, sniffed cheaply via
// gjson rather than a full unmarshal.
func (c *Codec) normalize(frame []byte) (raw []byte, tag string, err error) {
	raw = frame
	if c.format == FormatMsgpack {
		var generic any
		if err := msgpack.Unmarshal(frame, &generic); err != nil {
			return nil, "", err
		}
		raw, err = json.Marshal(generic)
		if err != nil {
			return nil, "", err
		}
	}
	tag = gjson.GetBytes(raw, "type").String()
	if tag == "" {
		return nil, "", fmt.Errorf("missing type tag")
	}
	return raw, tag, nil
}
