// Package workerpool bounds how many blocking store calls run at once.
package workerpool

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

const DefaultSize = 16

var ErrPoolSaturated = errors.New("worker pool saturated")

// Pool is a fixed number of slots. A nil *Pool runs work inline.
type Pool struct {
	name    string
	size    int
	sem     *semaphore.Weighted
	metrics *observability.Metrics
	log     *logger.Logger
}

func New(name string, size int, metrics *observability.Metrics, baseLog *logger.Logger) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	if name == "" {
		name = "default"
	}
	p := &Pool{
		name:    name,
		size:    size,
		sem:     semaphore.NewWeighted(int64(size)),
		metrics: metrics,
	}
	if baseLog != nil {
		p.log = baseLog.With("pool", name)
	}
	return p
}

func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return p.size
}

// Submit waits for a free slot, then runs fn on the calling goroutine. It
// returns ctx.Err() if the context ends first.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	if p == nil {
		return fn(ctx)
	}
	start := time.Now()
	if !p.sem.TryAcquire(1) {
		p.metrics.PoolSaturated(p.name, "blocked")
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	return p.run(ctx, start, fn)
}

// TrySubmit runs fn only if a slot is free right now.
func (p *Pool) TrySubmit(ctx context.Context, fn func(context.Context) error) error {
	if p == nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.sem.TryAcquire(1) {
		p.metrics.PoolSaturated(p.name, "rejected")
		if p.log != nil {
			p.log.Debug("worker pool saturated", "size", p.size)
		}
		return ErrPoolSaturated
	}
	return p.run(ctx, time.Now(), fn)
}

func (p *Pool) run(ctx context.Context, start time.Time, fn func(context.Context) error) error {
	p.metrics.PoolAcquired(p.name, time.Since(start))
	defer func() {
		p.sem.Release(1)
		p.metrics.PoolReleased(p.name)
	}()
	return fn(ctx)
}

// Group fans work out through the pool. The first error cancels the group
// context.
type Group struct {
	pool *Pool
	g    *errgroup.Group
	ctx  context.Context
}

func (p *Pool) Group(ctx context.Context) (*Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if p != nil {
		g.SetLimit(p.size)
	}
	return &Group{pool: p, g: g, ctx: gctx}, gctx
}

func (g *Group) Go(fn func(context.Context) error) {
	g.g.Go(func() error {
		return g.pool.Submit(g.ctx, fn)
	})
}

func (g *Group) Wait() error {
	return g.g.Wait()
}
