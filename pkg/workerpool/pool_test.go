package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap_PreservesOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}

	got := Map(context.Background(), 3, items, func(_ context.Context, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})

	for i, n := range items {
		if got[i] != n*10 {
			t.Fatalf("index %d: got %d want %d", i, got[i], n*10)
		}
	}
}

func TestMap_RespectsLimit(t *testing.T) {
	var (
		running int32
		peak    int32
	)

	items := make([]int, 20)
	Map(context.Background(), 4, items, func(_ context.Context, _ int) struct{} {
		cur := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}
	})

	if peak > 4 {
		t.Fatalf("more than 4 tasks ran at once: %d", peak)
	}
}

func TestMap_FailureIsolation(t *testing.T) {
	type result struct {
		ok  bool
		err string
	}

	got := Map(context.Background(), 2, []string{"ok", "fail", "ok"}, func(ctx context.Context, s string) result {
		if s == "fail" {
			return result{err: "download failed"}
		}
		// siblings still see a live context
		if ctx.Err() != nil {
			return result{err: ctx.Err().Error()}
		}
		return result{ok: true}
	})

	if !got[0].ok || got[1].ok || !got[2].ok {
		t.Fatalf("one failure must not affect siblings: %+v", got)
	}
}

func TestMap_Empty(t *testing.T) {
	if got := Map(context.Background(), 0, []int(nil), func(context.Context, int) int { return 1 }); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
