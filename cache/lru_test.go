package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchThroughMissesFetchAndCacheHits(t *testing.T) {
	t.Parallel()
	lru, err := newFetchThrough[string, string](16, func(k string) string { return k })
	if err != nil {
		t.Fatal(err)
	}
	var calls int32
	fetch := func(ctx context.Context, key string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value-" + key, nil
	}

	v, err := lru.Get(context.Background(), "k1", fetch)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "value-k1" {
		t.Errorf("v = %q", v)
	}
	time.Sleep(50 * time.Millisecond) // otter processes Set asynchronously

	v, err = lru.Get(context.Background(), "k1", fetch)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "value-k1" {
		t.Errorf("v = %q", v)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

func TestFetchThroughPropagatesFetchError(t *testing.T) {
	t.Parallel()
	lru, err := newFetchThrough[string, int](16, func(k string) string { return k })
	if err != nil {
		t.Fatal(err)
	}
	wantErr := errFetch{}
	_, err = lru.Get(context.Background(), "missing", func(ctx context.Context, key string) (int, error) {
		return 0, wantErr
	})
	if err != wantErr {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestFetchThroughConcurrentMissesCoalesce(t *testing.T) {
	t.Parallel()
	lru, err := newFetchThrough[string, int](16, func(k string) string { return k })
	if err != nil {
		t.Fatal(err)
	}
	var calls int32
	fetch := func(ctx context.Context, key string) (int, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	}

	const n = 10
	done := make(chan int, n)
	for i := 0; i < n; i++ {
		go func() {
			v, err := lru.Get(context.Background(), "hot", fetch)
			if err != nil {
				t.Error(err)
			}
			done <- v
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

type errFetch struct{}

func (errFetch) Error() string { return "fetch failed" }
