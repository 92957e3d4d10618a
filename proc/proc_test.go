package proc

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinOutcomes(t *testing.T) {
	testCases := []struct {
		name    string
		fn      func(*Thread[int]) int
		cancel  bool
		kind    OutcomeKind
		value   int
		wantErr error
	}{
		{
			name:  "normal return",
			fn:    func(*Thread[int]) int { return 7 },
			kind:  NormalValue,
			value: 7,
		},
		{
			name: "forced exit carries value",
			fn: func(t *Thread[int]) int {
				t.Exit(-3)
				return 9
			},
			kind:  ForcedValue,
			value: -3,
		},
		{
			name: "abort without cancel",
			fn: func(t *Thread[int]) int {
				t.Abort()
				return 1
			},
			kind:    TaskAborted,
			wantErr: ErrAborted,
		},
		{
			name: "canceled while sleeping",
			fn: func(t *Thread[int]) int {
				t.Sleep(time.Hour)
				return 1
			},
			cancel:  true,
			kind:    TaskAborted,
			wantErr: ErrCanceled,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(io.Discard)
			task := Spawn(p, tc.name, tc.fn)
			assert.NotZero(t, task.ID())
			if tc.cancel {
				require.NoError(t, task.Cancel())
			}
			o, err := task.Join()
			assert.Equal(t, tc.kind, o.Kind)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.value, o.Value)
		})
	}
}

func TestCancelWithoutCancellationPoint(t *testing.T) {
	p := New(io.Discard)
	release := make(chan struct{})
	task := Spawn(p, "busy", func(*Thread[int]) int {
		<-release
		return 5
	})
	require.NoError(t, task.Cancel())
	close(release)

	o, err := task.Join()
	require.NoError(t, err)
	assert.Equal(t, NormalValue, o.Kind)
	assert.Equal(t, 5, o.Value)
}

func TestTestCancel(t *testing.T) {
	p := New(io.Discard)
	reached := make(chan struct{})
	proceed := make(chan struct{})
	var passed atomic.Bool
	task := Spawn(p, "poll", func(t *Thread[int]) int {
		close(reached)
		<-proceed
		t.TestCancel()
		passed.Store(true)
		return 0
	})
	<-reached
	require.NoError(t, task.Cancel())
	close(proceed)

	_, err := task.Join()
	assert.ErrorIs(t, err, ErrCanceled)
	assert.False(t, passed.Load())
}

func TestJoinTwice(t *testing.T) {
	p := New(io.Discard)
	task := Spawn(p, "once", func(*Thread[int]) int { return 1 })
	_, err := task.Join()
	require.NoError(t, err)

	o, err := task.Join()
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, TaskNeverJoined, o.Kind)
}

func TestNilTask(t *testing.T) {
	var task *Task[int]
	o, err := task.Join()
	assert.ErrorIs(t, err, ErrNoSuchThread)
	assert.Equal(t, TaskNeverJoined, o.Kind)
	assert.ErrorIs(t, task.Cancel(), ErrNoSuchThread)
	assert.Zero(t, task.ID())
}

func TestThreadIDsAreDistinct(t *testing.T) {
	p := New(io.Discard)
	hold := make(chan struct{})
	a := Spawn(p, "a", func(*Thread[int]) int { <-hold; return 0 })
	b := Spawn(p, "b", func(*Thread[int]) int { <-hold; return 0 })
	assert.Positive(t, a.ID())
	assert.Positive(t, b.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	close(hold)
	_, _ = a.Join()
	_, _ = b.Join()
}

func TestSimulatedProcessExit(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	var sleeperWoke atomic.Bool
	Spawn(p, "sleeper", func(t *Thread[int]) int {
		t.Sleep(time.Hour)
		sleeperWoke.Store(true)
		return 0
	})
	Spawn(p, "exiter", func(t *Thread[int]) int {
		fmt.Fprintln(t.Process().Stdout(), "before")
		t.Process().Exit(3)
		fmt.Fprintln(t.Process().Stdout(), "unreachable")
		return 0
	})

	assert.Equal(t, 3, p.Wait())
	p.Drain()
	fmt.Fprintln(p.Stdout(), "after")

	code, exited := p.Exited()
	assert.True(t, exited)
	assert.Equal(t, 3, code)
	assert.False(t, sleeperWoke.Load())
	assert.Equal(t, "before\n", buf.String())
}

func TestExitFunc(t *testing.T) {
	got := make(chan int, 1)
	p := New(io.Discard, WithExitFunc(func(code int) { got <- code }), WithPID(42))
	assert.Equal(t, 42, p.PID())
	Spawn(p, "exiter", func(t *Thread[int]) int {
		t.Process().Exit(0)
		return 1
	})
	assert.Equal(t, 0, <-got)
	assert.Equal(t, 0, p.Wait())
}

func TestMainThreadExitKeepsProcessAlive(t *testing.T) {
	p := New(io.Discard)
	var workerDone atomic.Bool
	start := time.Now()
	Spawn(p, "main", func(t *Thread[struct{}]) struct{} {
		Spawn(t.Process(), "worker", func(w *Thread[int]) int {
			w.Sleep(20 * time.Millisecond)
			workerDone.Store(true)
			return 0
		})
		t.Exit(struct{}{})
		return struct{}{}
	})

	assert.Equal(t, 0, p.Wait())
	assert.True(t, workerDone.Load())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	_, exited := p.Exited()
	assert.False(t, exited)
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "normal", NormalValue.String())
	assert.Equal(t, "forced", ForcedValue.String())
	assert.Equal(t, "aborted", TaskAborted.String())
	assert.Equal(t, "never-joined", TaskNeverJoined.String())
	assert.Equal(t, "OutcomeKind(9)", OutcomeKind(9).String())
}
