package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/simp-lee/parkdash/internal/domain"
)

func counter(n *atomic.Int32, v string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		n.Add(1)
		return v, nil
	}
}

func TestKey_String(t *testing.T) {
	if got := K("slots", "list", "i=0").String(); got != "slots|list|i=0" {
		t.Errorf("String() = %q", got)
	}
	if K("a|b").String() == K("a", "b").String() {
		t.Error("separator inside a segment must not collide with two segments")
	}
	base := K("slot")
	ext := base.With("7")
	if len(base) != 1 || ext.String() != "slot|7" {
		t.Errorf("With() mutated base or built %q", ext.String())
	}
}

func TestHasPrefix_SegmentBoundaries(t *testing.T) {
	tests := []struct {
		key, prefix string
		want        bool
	}{
		{"slots|list|i=0", "slots", true},
		{"slots", "slots", true},
		{"slotOrders|x", "slots", false},
		{"slot|7", "slots", false},
		{"slot|7", "slot", true},
		{"slot|70", "slot|7", false},
		{"anything", "", true},
	}
	for _, tt := range tests {
		if got := hasPrefix(tt.key, tt.prefix); got != tt.want {
			t.Errorf("hasPrefix(%q, %q) = %v; want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestRead_CachesUntilInvalidated(t *testing.T) {
	c := NewCache(10, nil)
	ctx := context.Background()
	var calls atomic.Int32
	key := K("slots", "list", "i=0")

	for i := 0; i < 3; i++ {
		r := Read(ctx, c, key, true, counter(&calls, "v1"))
		if !r.IsOk() || r.Value != "v1" {
			t.Fatalf("Read() = %+v", r)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("fetch calls = %d; want 1", calls.Load())
	}

	c.Invalidate(K("slotOrders"))
	Read(ctx, c, key, true, counter(&calls, "v1"))
	if calls.Load() != 1 {
		t.Fatalf("unrelated prefix must not invalidate, calls = %d", calls.Load())
	}

	c.Invalidate(K("slots"))
	r := Read(ctx, c, key, true, counter(&calls, "v2"))
	if r.Value != "v2" || calls.Load() != 2 {
		t.Fatalf("after invalidation Read() = %q with %d calls", r.Value, calls.Load())
	}
}

func TestRead_Disabled(t *testing.T) {
	c := NewCache(10, nil)
	var calls atomic.Int32
	r := Read(context.Background(), c, K("slot", ""), false, counter(&calls, "x"))
	if !r.IsDisabled() || r.Err != nil {
		t.Fatalf("Read() = %+v; want disabled", r)
	}
	if calls.Load() != 0 {
		t.Fatal("disabled read must not fetch")
	}
}

func TestRead_ErrorsAreNotCached(t *testing.T) {
	c := NewCache(10, nil)
	ctx := context.Background()
	boom := domain.NewNetworkFailure(errors.New("down"))
	var calls atomic.Int32

	r := Read(ctx, c, K("users"), true, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	})
	if !r.IsErr() || !domain.IsNetworkFailure(r.Err) {
		t.Fatalf("Read() = %+v", r)
	}
	r = Read(ctx, c, K("users"), true, func(context.Context) (int, error) {
		calls.Add(1)
		return 5, nil
	})
	if r.Value != 5 || calls.Load() != 2 {
		t.Fatalf("second Read() = %+v after %d calls", r, calls.Load())
	}
}

func TestRead_ConcurrentReadsShareOneFetch(t *testing.T) {
	c := NewCache(10, nil)
	release := make(chan struct{})
	var calls atomic.Int32

	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Read(context.Background(), c, K("vehicles"), true, fetch).Value
		}(i)
	}
	// Give every reader time to join the flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d; want 1", calls.Load())
	}
	for i, r := range results {
		if r != "shared" {
			t.Errorf("results[%d] = %q", i, r)
		}
	}
}

func TestRead_StaleFetchIsNotStoredAfterInvalidation(t *testing.T) {
	c := NewCache(10, nil)
	key := K("slots", "list", "i=0")
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan domain.Result[string], 1)
	go func() {
		done <- Read(context.Background(), c, key, true, func(context.Context) (string, error) {
			close(started)
			<-release
			return "pre-mutation", nil
		})
	}()

	<-started
	c.Invalidate(K("slots"))

	var calls atomic.Int32
	fresh := Read(context.Background(), c, key, true, counter(&calls, "post-mutation"))
	if fresh.Value != "post-mutation" || calls.Load() != 1 {
		t.Fatalf("read after invalidation = %q (calls %d); must refetch", fresh.Value, calls.Load())
	}

	close(release)
	if r := <-done; r.Value != "pre-mutation" {
		t.Fatalf("in-flight reader got %q", r.Value)
	}

	again := Read(context.Background(), c, key, true, counter(&calls, "unused"))
	if again.Value != "post-mutation" {
		t.Errorf("cache holds %q; the slow pre-mutation response must not overwrite it", again.Value)
	}
}

func TestRead_CallerCancellationOnlyAbandonsThatCaller(t *testing.T) {
	c := NewCache(10, nil)
	key := K("users", "list")
	release := make(chan struct{})
	var calls atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "done", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	abandoned := make(chan domain.Result[string], 1)
	go func() { abandoned <- Read(ctx, c, key, true, fetch) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	r := <-abandoned
	if !r.IsErr() || !errors.Is(r.Err, context.Canceled) {
		t.Fatalf("cancelled caller got %+v", r)
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for !c.Has(key) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !c.Has(key) {
		t.Fatal("detached fetch should still populate the cache")
	}
	if got := Read(context.Background(), c, key, true, fetch).Value; got != "done" || calls.Load() != 1 {
		t.Errorf("Read() = %q after %d fetches", got, calls.Load())
	}
}

func TestInvalidate_AtomicAcrossPrefixes(t *testing.T) {
	c := NewCache(10, nil)
	ctx := context.Background()
	var calls atomic.Int32
	for _, k := range []Key{K("slotOrders", "a"), K("userSlotOrders", "u1", "a"), K("slots", "list", "a"), K("users", "list")} {
		Read(ctx, c, k, true, counter(&calls, "x"))
	}

	c.Invalidate(createOrder.Keys("")...)

	if c.Len() != 1 || !c.Has(K("users", "list")) {
		t.Errorf("Len() = %d; only the users entry should survive", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := NewCache(10, nil)
	var calls atomic.Int32
	Read(context.Background(), c, K("a"), true, counter(&calls, "x"))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
}

func TestCache_SizeBound(t *testing.T) {
	c := NewCache(2, nil)
	var calls atomic.Int32
	for _, k := range []string{"a", "b", "c"} {
		Read(context.Background(), c, K(k), true, counter(&calls, k))
	}
	if c.Len() != 2 || c.Has(K("a")) {
		t.Errorf("oldest entry should be evicted, Len() = %d", c.Len())
	}
}

func TestInvalidate_SegmentBoundary(t *testing.T) {
	c := NewCache(10, nil)
	ctx := context.Background()
	var calls atomic.Int32
	for _, k := range []Key{K("slot"), K("slot", "7"), K("slots", "list", "a"), K("slot|x")} {
		Read(ctx, c, k, true, counter(&calls, "x"))
	}

	c.Invalidate(K("slot"))

	if c.Has(K("slot")) || c.Has(K("slot", "7")) {
		t.Error("the prefix and the keys under it should be dropped")
	}
	if !c.Has(K("slots", "list", "a")) || !c.Has(K("slot|x")) {
		t.Errorf("Len() = %d; keys outside the segment prefix must survive", c.Len())
	}
}

func TestMutation_Keys(t *testing.T) {
	keys := updateOrderStatus.Keys("o1")
	want := []string{"slotOrders", "userSlotOrders", "slots", "slot", "dashboard", "slotOrder|o1"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v", prefixStrings(keys))
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Errorf("Keys()[%d] = %q; want %q", i, k.String(), want[i])
		}
	}
	if len(deleteSlot.Keys("")) != len(deleteSlot.Prefixes) {
		t.Error("ByID prefixes must be skipped without an id")
	}
}

func TestRun_FailureLeavesCacheUntouched(t *testing.T) {
	c := NewCache(10, nil)
	ctx := context.Background()
	var calls atomic.Int32
	Read(ctx, c, K("slots", "list"), true, counter(&calls, "x"))

	attempts := 0
	_, err := Run(ctx, c, deleteSlot, "missing", func(context.Context) (struct{}, error) {
		attempts++
		return struct{}{}, domain.ErrNotFound
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("Run() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d; mutations must not retry", attempts)
	}
	if !c.Has(K("slots", "list")) {
		t.Error("failed mutation must not invalidate")
	}
}

func TestRun_RepeatedMutationInvalidatesEachTime(t *testing.T) {
	c := NewCache(10, nil)
	ctx := context.Background()
	var calls atomic.Int32
	key := K("vehicles", "list")

	for i := 0; i < 2; i++ {
		Read(ctx, c, key, true, counter(&calls, "x"))
		if _, err := Run(ctx, c, createVehicle, "", func(context.Context) (int, error) { return 1, nil }); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if c.Has(key) {
			t.Fatalf("iteration %d: key still cached after mutation", i)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d; want 2", calls.Load())
	}
}
