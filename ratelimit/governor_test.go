package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	cases := []struct {
		method, path string
		want         BucketKey
	}{
		{"POST", "/channels/chan_1/messages", BucketKey{Family: FamilyMessaging, Entity: "chan_1"}},
		{"PATCH", "/servers/srv_1", BucketKey{Family: FamilyServers, Entity: "srv_1"}},
		{"PATCH", "/users/usr_1", BucketKey{Family: FamilyUserEdit, Entity: "usr_1"}},
		{"DELETE", "/auth/session/current", BucketKey{Family: FamilyAuthDelete}},
		{"GET", "/bots/@me", BucketKey{Family: FamilyAny}},
		{"GET", "/", BucketKey{Family: FamilyAny}},
	}
	for _, tc := range cases {
		got := Classify(tc.method, tc.path)
		if got != tc.want {
			t.Errorf("Classify(%s, %s) = %+v, want %+v", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestGovernorTakeExhaustsThenRefuses(t *testing.T) {
	t.Parallel()
	g := New()
	key := BucketKey{Family: FamilyMessaging, Entity: "x"}

	for i := 0; i < 10; i++ {
		ok, _ := g.Take(key)
		if !ok {
			t.Fatalf("take %d: want OK", i+1)
		}
	}

	ok, wait := g.Take(key)
	if ok {
		t.Fatal("11th take: want refused")
	}
	if wait <= 0 {
		t.Errorf("11th take: wait = %v, want positive", wait)
	}
}

func TestGovernorTakeResetsAfterWindow(t *testing.T) {
	t.Parallel()
	g := New()
	key := BucketKey{Family: FamilyUserEdit, Entity: "u1"}

	ok, _ := g.Take(key)
	if !ok {
		t.Fatal("first take: want OK")
	}
	ok, _ = g.Take(key)
	if !ok {
		t.Fatal("second take: want OK (limit is 2)")
	}
	if ok, _ := g.Take(key); ok {
		t.Fatal("third take: want refused")
	}

	g.mu.Lock()
	g.buckets[key].reset = g.now().Add(-time.Millisecond)
	g.mu.Unlock()

	ok, _ = g.Take(key)
	if !ok {
		t.Error("take after window reset: want OK")
	}
}

func TestGovernorObserveReconcilesThenTakeContinues(t *testing.T) {
	t.Parallel()
	g := New()
	key := BucketKey{Family: FamilyMessaging, Entity: "x"}

	for i := 0; i < 10; i++ {
		if ok, _ := g.Take(key); !ok {
			t.Fatalf("take %d before observe: want OK", i+1)
		}
	}
	if ok, _ := g.Take(key); ok {
		t.Fatal("11th take before observe: want refused")
	}

	headers := http.Header{}
	headers.Set("X-RateLimit-Limit", "10")
	headers.Set("X-RateLimit-Remaining", "5")
	headers.Set("X-RateLimit-Reset-After", "1000")
	g.Observe(key, headers)

	for i := 0; i < 5; i++ {
		if ok, _ := g.Take(key); !ok {
			t.Fatalf("take %d after observe: want OK", i+1)
		}
	}
	if ok, _ := g.Take(key); ok {
		t.Fatal("17th take overall: want refused")
	}
}

func TestGovernorObserveIgnoresPartialHeaders(t *testing.T) {
	t.Parallel()
	g := New()
	key := BucketKey{Family: FamilyAny}

	if ok, _ := g.Take(key); !ok {
		t.Fatal("take: want OK")
	}

	headers := http.Header{}
	headers.Set("X-RateLimit-Limit", "10")
	headers.Set("X-RateLimit-Remaining", "5")
	// Reset-After deliberately missing.
	g.Observe(key, headers)

	g.mu.Lock()
	b := g.buckets[key]
	used, limit := b.used, b.limit
	g.mu.Unlock()

	if limit != defaultLimits[FamilyAny].N || used != 1 {
		t.Errorf("partial observe mutated bucket: used=%d limit=%d, want used=1 limit=%d", used, limit, defaultLimits[FamilyAny].N)
	}
}
