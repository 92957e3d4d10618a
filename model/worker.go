package model

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/exitpaths/proc"
	"github.com/timewinder-dev/exitpaths/sema"
)

// Worker increments the shared counter twice around a sleep, then ends the
// way the mode says. Everything it shares with other threads comes in through
// its fields.
type Worker struct {
	Index    int
	Item     *WorkItem
	Mode     Mode
	Counter  *SharedCounter
	Sem      sema.Semaphore
	Reporter Reporter
	Unit     time.Duration

	seq   int
	state atomic.Int32
}

func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

func (w *Worker) setState(s WorkerState) {
	w.state.Store(int32(s))
	log.Trace().Int("worker", w.Index).Stringer("state", s).Msg("worker state")
}

// Run is the thread function.
func (w *Worker) Run(t *proc.Thread[*WorkItem]) *WorkItem {
	p := t.Process()
	defer func() {
		// Goexit through a cancellation point leaves the state mid-run.
		if !w.State().Terminal() && t.Context().Err() != nil {
			w.setState(Cancelled)
		}
	}()

	w.setState(Running)
	count := w.increment(t)
	w.seq++
	w.Reporter.Printf("thread: process id %d, thread id = %d, in = %d, count = %d, s = %d\n",
		p.PID(), t.ID(), w.Item.In, count, w.seq)
	reportSemValue(w.Reporter, "thread", w.Sem)

	w.setState(Sleeping)
	t.Sleep(time.Duration(w.Item.In) * w.Unit)
	w.setState(Running)

	count = w.increment(t)
	w.seq++
	w.Reporter.Printf("thread: process id %d, thread id = %d, in = %d, count = %d, s = %d\n",
		p.PID(), t.ID(), w.Item.In, count, w.seq)

	switch w.Mode {
	case ModeWorkerThreadExit:
		w.Item.Out = -t.ID()
		w.setState(ForcedExit)
		t.Exit(w.Item)
	case ModeWorkerProcessExit:
		w.setState(ProcessExit)
		p.Exit(0)
	}

	w.Item.Out = t.ID()
	w.setState(NormalReturn)
	return w.Item
}

// increment is a cancellation point: a canceled acquire aborts the thread.
func (w *Worker) increment(t *proc.Thread[*WorkItem]) int {
	v, err := w.Counter.Increment(t.Context())
	if err != nil {
		log.Debug().Int("worker", w.Index).Err(err).Msg("increment interrupted")
		t.Abort()
	}
	return v
}

func reportSemValue(r Reporter, who string, s sema.Semaphore) {
	if v, ok := sema.Value(s); ok {
		r.Printf("%s: count_sem value = %d\n", who, v)
	} else {
		r.Printf("%s: count_sem value unsupported\n", who)
	}
}
