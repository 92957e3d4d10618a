package model

import (
	"context"

	"github.com/timewinder-dev/exitpaths/sema"
)

// SharedCounter is only touched with sem held.
type SharedCounter struct {
	sem   sema.Semaphore
	value int

	// yield, when set, runs between the read and the write of an increment.
	// Stress runs use it to widen the window a missing lock would expose.
	yield func()
}

func NewSharedCounter(sem sema.Semaphore, yield func()) *SharedCounter {
	return &SharedCounter{sem: sem, yield: yield}
}

// Increment adds one and returns the new value. The returned copy is safe to
// use after the semaphore is released.
func (c *SharedCounter) Increment(ctx context.Context) (int, error) {
	if err := c.sem.Acquire(ctx); err != nil {
		return 0, err
	}
	v := c.value
	if c.yield != nil {
		c.yield()
	}
	c.value = v + 1
	v = c.value
	c.sem.Release()
	return v, nil
}

func (c *SharedCounter) Load(ctx context.Context) (int, error) {
	if err := c.sem.Acquire(ctx); err != nil {
		return 0, err
	}
	v := c.value
	c.sem.Release()
	return v, nil
}
