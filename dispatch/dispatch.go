// Package dispatch turns a decoded wire.ServerMessage into calls against
// a Handlers struct of per-event callbacks, expanding Bulk recursively
// and running each callback on its own goroutine so one slow handler
// never stalls delivery of the next event (spec §4.D, §6).
package dispatch

import (
	"log/slog"

	"github.com/stoat-chat/stoatgo/internal/telemetry"
	"github.com/stoat-chat/stoatgo/wire"
)

// Handlers is the set of event callbacks a consumer may register. Every
// field defaults to a no-op; set only the ones you care about. Each
// callback receives the raw wire event so it can read fields beyond
// what the cache tracks.
type Handlers struct {
	Ready       func(wire.Ready)
	Message     func(wire.Message)
	MessageUpdate func(wire.MessageUpdate)
	MessageAppend func(wire.MessageAppend)
	MessageReact  func(wire.MessageReact)
	MessageUnreact func(wire.MessageUnreact)
	MessageDelete  func(wire.MessageDelete)
	BulkMessageDelete func(wire.BulkMessageDelete)

	ChannelCreate func(wire.ChannelCreate)
	ChannelUpdate func(wire.ChannelUpdate)
	ChannelDelete func(wire.ChannelDelete)
	ChannelGroupJoin func(wire.ChannelGroupJoin)
	ChannelGroupLeave func(wire.ChannelGroupLeave)
	ChannelStartTyping func(wire.ChannelStartTyping)
	ChannelStopTyping  func(wire.ChannelStopTyping)

	ServerCreate func(wire.ServerCreate)
	ServerUpdate func(wire.ServerUpdate)
	ServerDelete func(wire.ServerDelete)
	ServerMemberJoin  func(wire.ServerMemberJoin)
	ServerMemberUpdate func(wire.ServerMemberUpdate)
	ServerMemberLeave  func(wire.ServerMemberLeave)
	ServerRoleUpdate func(wire.ServerRoleUpdate)
	ServerRoleDelete func(wire.ServerRoleDelete)

	UserUpdate       func(wire.UserUpdate)
	UserRelationship func(wire.UserRelationship)

	EmojiCreate func(wire.EmojiCreate)
	EmojiDelete func(wire.EmojiDelete)

	// Unknown is called for any event type this package does not model
	// by name, including Unknown-tagged frames (spec §9 open question
	// about accepting newer wire schemas).
	Unknown func(wire.ServerMessage)
}

// Dispatcher expands and routes server events to a Handlers set.
type Dispatcher struct {
	handlers Handlers
	log      *slog.Logger
	metrics  *telemetry.Metrics // nil disables instrumentation
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the dispatcher's logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics enables Prometheus instrumentation for this dispatcher.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New returns a Dispatcher routing events to handlers.
func New(handlers Handlers, opts ...Option) *Dispatcher {
	d := &Dispatcher{handlers: handlers, log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch routes msg to the matching Handlers callback, recursively
// expanding Bulk in order. Each leaf callback runs on its own goroutine,
// so handlers must not assume ordering relative to each other; callers
// that need ordered application (e.g. feeding a cache.Cache) should do
// that synchronously before calling Dispatch, not inside a handler.
func (d *Dispatcher) Dispatch(msg wire.ServerMessage) {
	if bulk, ok := msg.(wire.Bulk); ok {
		for _, inner := range bulk.V {
			d.Dispatch(inner)
		}
		return
	}

	d.observe(msg.Kind())

	switch m := msg.(type) {
	case wire.Ready:
		run(d.handlers.Ready, m)
	case wire.Message:
		run(d.handlers.Message, m)
	case wire.MessageUpdate:
		run(d.handlers.MessageUpdate, m)
	case wire.MessageAppend:
		run(d.handlers.MessageAppend, m)
	case wire.MessageReact:
		run(d.handlers.MessageReact, m)
	case wire.MessageUnreact:
		run(d.handlers.MessageUnreact, m)
	case wire.MessageDelete:
		run(d.handlers.MessageDelete, m)
	case wire.BulkMessageDelete:
		run(d.handlers.BulkMessageDelete, m)

	case wire.ChannelCreate:
		run(d.handlers.ChannelCreate, m)
	case wire.ChannelUpdate:
		run(d.handlers.ChannelUpdate, m)
	case wire.ChannelDelete:
		run(d.handlers.ChannelDelete, m)
	case wire.ChannelGroupJoin:
		run(d.handlers.ChannelGroupJoin, m)
	case wire.ChannelGroupLeave:
		run(d.handlers.ChannelGroupLeave, m)
	case wire.ChannelStartTyping:
		run(d.handlers.ChannelStartTyping, m)
	case wire.ChannelStopTyping:
		run(d.handlers.ChannelStopTyping, m)

	case wire.ServerCreate:
		run(d.handlers.ServerCreate, m)
	case wire.ServerUpdate:
		run(d.handlers.ServerUpdate, m)
	case wire.ServerDelete:
		run(d.handlers.ServerDelete, m)
	case wire.ServerMemberJoin:
		run(d.handlers.ServerMemberJoin, m)
	case wire.ServerMemberUpdate:
		run(d.handlers.ServerMemberUpdate, m)
	case wire.ServerMemberLeave:
		run(d.handlers.ServerMemberLeave, m)
	case wire.ServerRoleUpdate:
		run(d.handlers.ServerRoleUpdate, m)
	case wire.ServerRoleDelete:
		run(d.handlers.ServerRoleDelete, m)

	case wire.UserUpdate:
		run(d.handlers.UserUpdate, m)
	case wire.UserRelationship:
		run(d.handlers.UserRelationship, m)

	case wire.EmojiCreate:
		run(d.handlers.EmojiCreate, m)
	case wire.EmojiDelete:
		run(d.handlers.EmojiDelete, m)

	default:
		if d.handlers.Unknown != nil {
			go d.handlers.Unknown(msg)
		}
	}
}

func (d *Dispatcher) observe(kind string) {
	if d.metrics != nil {
		d.metrics.EventsProcessedTotal.WithLabelValues(kind).Inc()
	}
}

// run spawns fn(m) on its own goroutine, unless fn is nil.
func run[T wire.ServerMessage](fn func(T), m T) {
	if fn == nil {
		return
	}
	go fn(m)
}
