package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yungbote/tutor-backend/internal/observability"
)

func TestTrySubmitFailsFastWhenFull(t *testing.T) {
	m := observability.New()
	p := New("test", 1, m, nil)
	hold := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- p.Submit(context.Background(), func(context.Context) error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	err := p.TrySubmit(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrPoolSaturated) {
		t.Fatalf("expected ErrPoolSaturated, got %v", err)
	}
	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := p.TrySubmit(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("slot should be free again: %v", err)
	}

	count, err := testutil.GatherAndCount(m.Registry(), "tutor_worker_pool_saturated_total")
	if err != nil || count != 1 {
		t.Fatalf("saturation metric: count=%d err=%v", count, err)
	}
}

func TestSubmitBlocksUntilContextEnds(t *testing.T) {
	p := New("test", 1, nil, nil)
	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = p.Submit(context.Background(), func(context.Context) error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started
	defer close(hold)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := p.Submit(ctx, func(context.Context) error { ran = true; return nil })
	if !errors.Is(err, context.DeadlineExceeded) || ran {
		t.Fatalf("expected deadline exceeded without running, got %v ran=%v", err, ran)
	}
}

func TestGroupBoundsConcurrency(t *testing.T) {
	p := New("test", 3, nil, nil)
	g, _ := p.Group(context.Background())
	var inflight, peak int64
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		g.Go(func(context.Context) error {
			n := atomic.AddInt64(&inflight, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt64(&inflight, -1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeds pool size", peak)
	}
}

func TestGroupReturnsFirstError(t *testing.T) {
	p := New("test", 2, nil, nil)
	g, _ := p.Group(context.Background())
	boom := errors.New("boom")
	g.Go(func(context.Context) error { return boom })
	g.Go(func(ctx context.Context) error { <-ctx.Done(); return nil })
	if err := g.Wait(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestNilPoolRunsInline(t *testing.T) {
	var p *Pool
	called := false
	if err := p.TrySubmit(context.Background(), func(context.Context) error { called = true; return nil }); err != nil || !called {
		t.Fatalf("nil pool should run inline")
	}
	g, _ := p.Group(context.Background())
	g.Go(func(context.Context) error { return nil })
	if err := g.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
