// Package bot wires a gateway session, the event cache, and the handler
// dispatcher into the single pump loop a consumer actually runs: apply
// each event to the cache synchronously (so handlers always observe a
// cache state at least as new as the event they were called for), then
// hand it to the dispatcher for concurrent callback delivery.
package bot

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/stoat-chat/stoatgo/cache"
	"github.com/stoat-chat/stoatgo/dispatch"
	"github.com/stoat-chat/stoatgo/gateway"
)

// Bot couples one gateway session to one cache and one dispatcher.
type Bot struct {
	Session *gateway.Session
	Cache   *cache.Cache
	Dispatch *dispatch.Dispatcher

	log *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger overrides the bot's logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) { b.log = l }
}

// New couples session, c, and d into a Bot.
func New(session *gateway.Session, c *cache.Cache, d *dispatch.Dispatcher, opts ...Option) *Bot {
	b := &Bot{Session: session, Cache: c, Dispatch: d, log: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run pumps events until ctx is cancelled or the gateway session gives up
// (which, per the gateway's own contract, only happens on ctx
// cancellation — see package gateway). Uses errgroup so a future second
// long-running concern (e.g. a periodic member-list refresher) can be
// added as a sibling goroutine that cancels the whole group on error,
// the same shape as the teacher's worker.Runner.
func (b *Bot) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			msg, err := b.Session.Next(ctx)
			if err != nil {
				return err
			}
			b.Cache.Apply(msg)
			b.Dispatch.Dispatch(msg)
		}
	})
	return g.Wait()
}
