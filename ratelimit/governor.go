package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limit is a family's default allowance: up to N requests per Window.
type Limit struct {
	N      int
	Window time.Duration
}

// defaultLimits is the table-driven per-family default. Unknown families
// (should not occur; Classify always returns one of these) fall back to
// FamilyAny's limit.
var defaultLimits = map[Family]Limit{
	FamilyMessaging:  {N: 10, Window: 10 * time.Second},
	FamilyServers:    {N: 5, Window: 10 * time.Second},
	FamilyUserEdit:   {N: 2, Window: 10 * time.Second},
	FamilyAuthDelete: {N: 2, Window: 10 * time.Second},
	FamilyAny:        {N: 20, Window: 10 * time.Second},
}

type bucket struct {
	limit int
	used  int
	reset time.Time
}

// Governor is the client-side rate-limit table: one bucket per BucketKey,
// reconciled against the server's own X-RateLimit-* headers as responses
// arrive. take never blocks (spec: "no automatic sleep"); a refused take
// surfaces as a duration the caller should wait before retrying.
type Governor struct {
	mu      sync.Mutex
	buckets map[BucketKey]*bucket
	now     func() time.Time
}

// New returns an empty Governor.
func New() *Governor {
	return &Governor{
		buckets: make(map[BucketKey]*bucket),
		now:     time.Now,
	}
}

// Take attempts to consume one unit of key's bucket. If the bucket has
// expired its window is reset to limit/0-used, starting a fresh
// now+window deadline. On success it returns (true, 0); on refusal it
// returns (false, reset-now) — the duration the caller should wait
// before retrying.
func (g *Governor) Take(key BucketKey) (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	b, ok := g.buckets[key]
	if !ok {
		lim := limitFor(key.Family)
		b = &bucket{limit: lim.N, reset: now.Add(lim.Window)}
		g.buckets[key] = b
	}
	if !now.Before(b.reset) {
		lim := limitFor(key.Family)
		b.limit = lim.N
		b.used = 0
		b.reset = now.Add(lim.Window)
	}

	if b.used < b.limit {
		b.used++
		return true, 0
	}
	return false, b.reset.Sub(now)
}

// Observe reconciles key's bucket against response headers. It only
// overwrites state when X-RateLimit-Limit, -Remaining, and -Reset-After
// are all present and parseable (SPEC_FULL.md §12); a partial or absent
// header set leaves the governor's own accounting untouched.
func (g *Governor) Observe(key BucketKey, headers http.Header) {
	limit, okL := parseInt(headers.Get("X-RateLimit-Limit"))
	remaining, okR := parseInt(headers.Get("X-RateLimit-Remaining"))
	resetAfterMs, okA := parseInt(headers.Get("X-RateLimit-Reset-After"))
	if !okL || !okR || !okA {
		return
	}

	used := limit - remaining
	if used < 0 {
		used = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{}
		g.buckets[key] = b
	}
	b.limit = limit
	b.used = used
	b.reset = now.Add(time.Duration(resetAfterMs) * time.Millisecond)
}

func limitFor(f Family) Limit {
	if l, ok := defaultLimits[f]; ok {
		return l
	}
	return defaultLimits[FamilyAny]
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
