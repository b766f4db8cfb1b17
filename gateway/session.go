// Package gateway implements the resilient websocket session: a single
// long-lived connection to the event stream that reconnects silently on
// any transport or protocol failure, never surfacing those failures to
// the caller (spec §4.D, §7).
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"

	"github.com/stoat-chat/stoatgo"
	"github.com/stoat-chat/stoatgo/internal/telemetry"
	"github.com/stoat-chat/stoatgo/wire"
)

const (
	defaultURL       = "wss://ws.revolt.chat"
	heartbeatPeriod  = 30 * time.Second
	reconnectBackoff = 5 * time.Second
)

// frame is one inbound websocket message, or the error that ended the
// read loop. The reader goroutine is the only thing that ever calls
// conn.ReadMessage, so a heartbeat tick can never land mid-read and lose
// a partially-read frame (spec §9).
type frame struct {
	data []byte
	err  error
}

// Session is a persistent, reconnecting gateway connection. The zero
// value is not usable; construct with New. A Session is safe for
// concurrent use: Next is expected to be called from a single consumer
// goroutine, while Send may be called from any goroutine.
type Session struct {
	url   string
	token string
	codec *wire.Codec
	log   *slog.Logger
	dial  *websocket.Dialer

	metrics *telemetry.Metrics

	writeMu sync.Mutex
	conn    *websocket.Conn
	frames  chan frame

	lastActivity time.Time
	awaitingPong bool
}

// Option configures a Session.
type Option func(*Session)

// WithBaseURL overrides the gateway endpoint (default wss://ws.revolt.chat).
func WithBaseURL(u string) Option {
	return func(s *Session) { s.url = u }
}

// WithLogger overrides the session's logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithMetrics enables Prometheus instrumentation for this session.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// New returns a Session that will authenticate with token using format
// once dialed. The connection is not opened until the first call to
// Next.
func New(token string, format wire.Format, opts ...Option) *Session {
	s := &Session{
		url:   defaultURL,
		token: token,
		codec: wire.New(format, nil),
		log:   slog.Default(),
		dial:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) endpoint() string {
	q := url.Values{"format": {string(s.codec.Format())}, "token": {s.token}}
	return s.url + "?" + q.Encode()
}

// connect dials the gateway, authenticates, and starts the reader
// goroutine. Any failure here is transport-class and retried by the
// caller's backoff loop.
func (s *Session) connect(ctx context.Context) error {
	conn, _, err := s.dial.DialContext(ctx, s.endpoint(), nil)
	if err != nil {
		return fmt.Errorf("gateway: dial: %w", err)
	}

	authMsg, err := s.codec.EncodeClient(wire.Authenticate(s.token))
	if err != nil {
		conn.Close()
		return fmt.Errorf("gateway: encode authenticate: %w", err)
	}
	if err := conn.WriteMessage(messageType(s.codec.Format()), authMsg); err != nil {
		conn.Close()
		return fmt.Errorf("gateway: send authenticate: %w", err)
	}

	s.writeMu.Lock()
	s.conn = conn
	s.frames = make(chan frame, 8)
	s.lastActivity = time.Now()
	s.awaitingPong = false
	s.writeMu.Unlock()

	go s.readLoop(conn, s.frames)

	if s.metrics != nil {
		s.metrics.GatewayConnected.Set(1)
	}
	return nil
}

// readLoop is the only goroutine that ever calls ReadMessage on conn. It
// runs until the connection dies, then closes frames so the pump's
// select observes EOF rather than blocking forever.
func (s *Session) readLoop(conn *websocket.Conn, out chan<- frame) {
	defer close(out)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			out <- frame{err: err}
			return
		}
		out <- frame{data: data}
	}
}

func messageType(f wire.Format) int {
	if f == wire.FormatMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// reconnect tears down any existing connection and redials with an
// infinite constant backoff, as spec §4.D requires: only ctx
// cancellation stops the retry loop.
func (s *Session) reconnect(ctx context.Context) error {
	s.writeMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.writeMu.Unlock()

	if s.metrics != nil {
		s.metrics.GatewayConnected.Set(0)
		s.metrics.GatewayReconnectsTotal.Inc()
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := s.connect(ctx); err != nil {
			s.log.Warn("gateway: reconnect attempt failed", "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewConstantBackOff(reconnectBackoff)), backoff.WithMaxTries(0), backoff.WithMaxElapsedTime(0))
	return err
}

// Next blocks until the next decoded server event, reconnecting silently
// on any transport or protocol failure (spec §4.D). It implements the
// four-step algorithm: reconnect if a ping is outstanding and nothing has
// been read or written for two heartbeat periods, race the heartbeat
// timer against the next inbound frame, decode, and on decode failure
// loop rather than return. The only error Next can return is ctx
// cancellation.
func (s *Session) Next(ctx context.Context) (wire.ServerMessage, error) {
	s.writeMu.Lock()
	initialized := s.conn != nil
	s.writeMu.Unlock()
	if !initialized {
		if err := s.reconnect(ctx); err != nil {
			return nil, err
		}
	}

	for {
		s.writeMu.Lock()
		frames := s.frames
		lastActivity := s.lastActivity
		awaitingPong := s.awaitingPong
		s.writeMu.Unlock()

		if awaitingPong && time.Since(lastActivity) > 2*heartbeatPeriod {
			s.log.Warn("gateway: no activity for two heartbeats, reconnecting")
			if err := s.reconnect(ctx); err != nil {
				return nil, err
			}
			continue
		}

		due := lastActivity.Add(heartbeatPeriod)
		timer := time.NewTimer(time.Until(due))

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()

		case <-timer.C:
			if err := s.sendPing(); err != nil {
				s.log.Warn("gateway: ping failed", "error", err)
				if err := s.reconnect(ctx); err != nil {
					return nil, err
				}
			}
			continue

		case f, ok := <-frames:
			timer.Stop()
			if !ok || f.err != nil {
				if f.err != nil {
					s.log.Warn("gateway: read failed", "error", f.err)
				}
				if err := s.reconnect(ctx); err != nil {
					return nil, err
				}
				continue
			}

			s.writeMu.Lock()
			s.lastActivity = time.Now()
			s.awaitingPong = false
			s.writeMu.Unlock()

			msg, err := s.codec.DecodeServer(f.data)
			if err != nil {
				s.log.Warn("gateway: decode failed, dropping frame", "error", err)
				continue
			}
			if _, ok := msg.(wire.Pong); ok {
				continue
			}
			return msg, nil
		}
	}
}

func (s *Session) sendPing() error {
	s.writeMu.Lock()
	s.awaitingPong = true
	s.writeMu.Unlock()
	return s.Send(wire.Ping(0))
}

// Send serialises and writes a client message, guarded by a mutex so
// concurrent callers (the heartbeat and application code) never
// interleave writes on the same connection.
func (s *Session) Send(msg wire.ClientMessage) error {
	data, err := s.codec.EncodeClient(msg)
	if err != nil {
		return stoat.NewDecodeError(fmt.Errorf("gateway: encode client message: %w", err))
	}

	s.writeMu.Lock()
	conn := s.conn
	mt := messageType(s.codec.Format())
	s.writeMu.Unlock()
	if conn == nil {
		return stoat.NewTransportError(fmt.Errorf("gateway: not connected"))
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteMessage(mt, data); err != nil {
		return stoat.NewTransportError(err)
	}
	s.lastActivity = time.Now()
	return nil
}

// Close ends the session and releases the underlying connection.
func (s *Session) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
