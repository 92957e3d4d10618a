package sema

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"
)

var (
	ErrInvalid     = errors.New("invalid semaphore parameters")
	ErrUnknownKind = errors.New("unknown semaphore kind")
)

// Semaphore is a counting semaphore. Acquire blocks until a unit is available
// or ctx is done.
type Semaphore interface {
	Acquire(ctx context.Context) error
	Release()
}

// valuer is implemented by semaphores that can report their current count.
type valuer interface {
	value() int
}

// Value returns the number of units currently available. ok is false when the
// implementation can't be introspected.
func Value(s Semaphore) (v int, ok bool) {
	if vs, isValuer := s.(valuer); isValuer {
		return vs.value(), true
	}
	return 0, false
}

const (
	KindChannel  = "channel"
	KindWeighted = "weighted"
)

type Config struct {
	Kind    string `toml:"kind"`
	Initial int    `toml:"initial"`
	Max     int    `toml:"max"`
}

// Binary is a mutual exclusion semaphore: one unit, initially available.
func Binary() Config {
	return Config{Kind: KindChannel, Initial: 1, Max: 1}
}

func New(cfg Config) (Semaphore, error) {
	if cfg.Max < 1 || cfg.Initial < 0 || cfg.Initial > cfg.Max {
		return nil, fmt.Errorf("%w: initial %d, max %d", ErrInvalid, cfg.Initial, cfg.Max)
	}
	switch cfg.Kind {
	case KindChannel, "":
		return NewChan(cfg.Initial, cfg.Max), nil
	case KindWeighted:
		return NewWeighted(cfg.Initial, cfg.Max), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// Chan is a channel-backed semaphore. A held unit is a token in the channel.
type Chan struct {
	held chan struct{}
}

func NewChan(initial, max int) *Chan {
	c := &Chan{held: make(chan struct{}, max)}
	for i := initial; i < max; i++ {
		c.held <- struct{}{}
	}
	return c
}

func (c *Chan) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case c.held <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Chan) Release() {
	<-c.held
}

func (c *Chan) value() int {
	return cap(c.held) - len(c.held)
}

// Weighted wraps golang.org/x/sync/semaphore. It has no way to report its
// count.
type Weighted struct {
	w *semaphore.Weighted
}

func NewWeighted(initial, max int) *Weighted {
	w := semaphore.NewWeighted(int64(max))
	if initial < max {
		w.TryAcquire(int64(max - initial))
	}
	return &Weighted{w: w}
}

func (w *Weighted) Acquire(ctx context.Context) error {
	return w.w.Acquire(ctx, 1)
}

func (w *Weighted) Release() {
	w.w.Release(1)
}

// Noop never blocks. It stands in when a real semaphore could not be built,
// so callers get no exclusion at all.
type Noop struct{}

func (Noop) Acquire(context.Context) error { return nil }

func (Noop) Release() {}
