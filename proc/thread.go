package proc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrCanceled      = errors.New("thread was canceled")
	ErrAborted       = errors.New("thread ended without a result")
	ErrAlreadyJoined = errors.New("thread already joined")
	ErrNoSuchThread  = errors.New("no such thread")
)

// OutcomeKind says how a thread ended, as seen by the thread joining it.
type OutcomeKind int

const (
	// NormalValue: the thread function returned.
	NormalValue OutcomeKind = iota
	// ForcedValue: the thread called Exit with a value.
	ForcedValue
	// TaskAborted: the thread was canceled or stopped without a value.
	TaskAborted
	// TaskNeverJoined: there was nothing to join.
	TaskNeverJoined
)

func (k OutcomeKind) String() string {
	switch k {
	case NormalValue:
		return "normal"
	case ForcedValue:
		return "forced"
	case TaskAborted:
		return "aborted"
	case TaskNeverJoined:
		return "never-joined"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
}

// Thread is the handle a running thread function gets for itself.
type Thread[T any] struct {
	p      *Process
	id     int
	name   string
	ctx    context.Context
	cancel context.CancelCauseFunc

	forced  bool
	exitVal T
}

func (t *Thread[T]) ID() int {
	return t.id
}

func (t *Thread[T]) Name() string {
	return t.name
}

func (t *Thread[T]) Process() *Process {
	return t.p
}

// Context is canceled when someone cancels the thread.
func (t *Thread[T]) Context() context.Context {
	return t.ctx
}

// Exit ends the calling thread, handing v to whoever joins it.
func (t *Thread[T]) Exit(v T) {
	t.forced = true
	t.exitVal = v
	runtime.Goexit()
}

// Abort ends the calling thread without a value. It is how a thread acts on a
// cancellation request.
func (t *Thread[T]) Abort() {
	runtime.Goexit()
}

// TestCancel is a cancellation point: it aborts the thread if cancellation
// was requested, and halts it if the process has exited.
func (t *Thread[T]) TestCancel() {
	t.p.halt()
	if t.ctx.Err() != nil {
		t.Abort()
	}
}

// Sleep is a cancellation point.
func (t *Thread[T]) Sleep(d time.Duration) {
	t.TestCancel()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-t.ctx.Done():
		t.Abort()
	case <-t.p.done:
		runtime.Goexit()
	}
}

// Task is the joinable side of a spawned thread.
type Task[T any] struct {
	thread  *Thread[T]
	done    chan struct{}
	outcome Outcome[T]
	joined  atomic.Bool
}

// Spawn starts fn on a new thread owned by p. The goroutine is locked to its
// OS thread for its whole life, so the OS thread goes away with it. Spawn
// returns once the thread's identity is known.
func Spawn[T any](p *Process, name string, fn func(*Thread[T]) T) *Task[T] {
	ctx, cancel := context.WithCancelCause(context.Background())
	t := &Task[T]{
		thread: &Thread[T]{p: p, name: name, ctx: ctx, cancel: cancel},
		done:   make(chan struct{}),
	}
	started := make(chan struct{})
	p.live.Add(1)
	go func() {
		defer p.live.Done()
		defer close(t.done)
		defer cancel(nil)
		runtime.LockOSThread()

		if tid, ok := osThreadID(); ok {
			t.thread.id = tid
		} else {
			t.thread.id = int(p.nextID.Add(1))
		}
		close(started)

		returned := false
		defer func() {
			if returned {
				return
			}
			if t.thread.forced {
				t.outcome = Outcome[T]{Kind: ForcedValue, Value: t.thread.exitVal}
			} else {
				t.outcome = Outcome[T]{Kind: TaskAborted}
			}
		}()
		v := fn(t.thread)
		t.outcome = Outcome[T]{Kind: NormalValue, Value: v}
		returned = true
	}()
	<-started
	log.Debug().Str("thread", name).Int("tid", t.thread.id).Msg("spawned")
	return t
}

func (t *Task[T]) ID() int {
	if t == nil {
		return 0
	}
	return t.thread.id
}

// Cancel asks the thread to stop at its next cancellation point.
func (t *Task[T]) Cancel() error {
	if t == nil {
		return ErrNoSuchThread
	}
	t.thread.cancel(ErrCanceled)
	return nil
}

// Join waits for the thread to end. A thread may be joined once. If the
// process exits while waiting, the caller halts.
func (t *Task[T]) Join() (Outcome[T], error) {
	if t == nil {
		return Outcome[T]{Kind: TaskNeverJoined}, ErrNoSuchThread
	}
	if !t.joined.CompareAndSwap(false, true) {
		return Outcome[T]{Kind: TaskNeverJoined}, ErrAlreadyJoined
	}
	p := t.thread.p
	select {
	case <-t.done:
	case <-p.done:
	}
	p.halt()

	o := t.outcome
	if o.Kind == TaskAborted {
		// the context is always canceled once the thread is done; only the
		// cause says whether Cancel was called.
		if errors.Is(context.Cause(t.thread.ctx), ErrCanceled) {
			return o, ErrCanceled
		}
		return o, ErrAborted
	}
	return o, nil
}
