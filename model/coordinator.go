package model

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/exitpaths/proc"
	"github.com/timewinder-dev/exitpaths/sema"
)

// A Coordinator owns the shared state of one run: the work items, the
// semaphore and the counter. It runs on its own thread inside Process.
type Coordinator struct {
	Spec     *RunSpec
	Process  *proc.Process
	Reporter Reporter
	RunID    uuid.UUID

	Items   [NumWorkers]*WorkItem
	Workers [NumWorkers]*Worker
	Counter *SharedCounter

	// CounterYield is passed to the shared counter, see SharedCounter.
	CounterYield func()

	report atomic.Pointer[Report]
}

func NewCoordinator(p *proc.Process, spec *RunSpec, r Reporter) *Coordinator {
	if r == nil {
		r = &SilentReporter{}
	}
	return &Coordinator{
		Spec:     spec,
		Process:  p,
		Reporter: r,
		RunID:    uuid.New(),
		Items:    NewWorkItems(spec.Inputs),
	}
}

// Start spawns the coordinator thread.
func (c *Coordinator) Start() *proc.Task[*Report] {
	return proc.Spawn(c.Process, "main", c.Run)
}

// Report returns the final report, or nil if the coordinator never got to it.
func (c *Coordinator) Report() *Report {
	return c.report.Load()
}

// Run is the coordinator thread function.
func (c *Coordinator) Run(t *proc.Thread[*Report]) *Report {
	logger := log.With().Str("run", c.RunID.String()).Stringer("mode", c.Spec.Mode).Logger()
	mode := c.Spec.Mode

	degraded := false
	sem, err := sema.New(c.Spec.Semaphore)
	if err != nil {
		logger.Warn().Err(err).Msg("semaphore init failed, continuing without mutual exclusion")
		c.Reporter.Printf("sem_init: failed: %v\n", err)
		sem = sema.Noop{}
		degraded = true
	}
	c.Counter = NewSharedCounter(sem, c.CounterYield)

	// the workers own a[i].Out until joined, so the first report prints
	// copies taken before they start.
	var before [NumWorkers]WorkItem
	for i, item := range c.Items {
		before[i] = *item
	}

	var tasks [NumWorkers]*proc.Task[*WorkItem]
	for i := range tasks {
		c.Workers[i] = &Worker{
			Index:    i,
			Item:     c.Items[i],
			Mode:     mode,
			Counter:  c.Counter,
			Sem:      sem,
			Reporter: c.Reporter,
			Unit:     c.Spec.SleepUnit.Duration,
		}
		tasks[i] = proc.Spawn(c.Process, fmt.Sprintf("worker-%d", i), c.Workers[i].Run)
	}
	logger.Debug().Int("tid0", tasks[0].ID()).Int("tid1", tasks[1].ID()).Msg("workers spawned")

	var results [NumWorkers]*WorkItem
	c.printState(t, tasks, before, results)
	reportSemValue(c.Reporter, "main", sem)

	switch mode {
	case ModeMainThreadExit:
		logger.Info().Msg("main thread exiting, workers keep running")
		t.Exit(nil)
	case ModeMainProcessExit:
		logger.Info().Msg("exiting process before join")
		c.Process.Exit(0)
	case ModeCancel:
		if err := tasks[1].Cancel(); err != nil {
			logger.Warn().Err(err).Msg("cancel worker 1")
		}
	}

	// worker 0 is taken as it comes back; only worker 1 is checked for a
	// forced exit.
	var resolutions [NumWorkers]Resolution
	o, err := tasks[0].Join()
	results[0], resolutions[0] = c.resolveFirst(o, err)
	o, err = tasks[1].Join()
	results[1], resolutions[1] = c.resolve(1, o, err)

	var after [NumWorkers]WorkItem
	for i, item := range c.Items {
		after[i] = *item
	}
	c.Reporter.Printf("\n")
	c.printState(t, tasks, after, results)
	c.printResults(results)
	if mode == ModeCancel {
		c.printCanceledResult(tasks[1].ID(), results[1])
	}

	counter, err := c.Counter.Load(context.Background())
	if err != nil {
		logger.Warn().Err(err).Msg("reading final counter")
	}
	c.Reporter.Printf("main: count = %d\n", counter)

	r := &Report{
		RunID:      c.RunID.String(),
		Mode:       mode,
		PID:        c.Process.PID(),
		MainThread: t.ID(),
		Results:    resolutions,
		Counter:    counter,
		Degraded:   degraded,
	}
	for i := range tasks {
		r.Threads[i] = tasks[i].ID()
		r.Items[i] = after[i]
	}
	r.SemValue, r.SemSupported = sema.Value(sem)
	c.report.Store(r)
	logger.Info().Int("count", counter).
		Stringer("result0", resolutions[0]).
		Stringer("result1", resolutions[1]).
		Msg("run reported")

	switch mode {
	case ModeMainThreadExitLate:
		t.Exit(r)
	case ModeMainProcessExitLate:
		c.Process.Exit(0)
	}
	return r
}

// resolveFirst keeps whatever value worker 0 handed back, forced or not. Only
// a failed join empties the slot.
func (c *Coordinator) resolveFirst(o proc.Outcome[*WorkItem], err error) (*WorkItem, Resolution) {
	if err != nil {
		return c.joinFailed(0, o, err)
	}
	if o.Kind != proc.NormalValue {
		log.Debug().Stringer("outcome", o.Kind).Msg("worker 0 result kept")
	}
	return o.Value, ResultPresent
}

func (c *Coordinator) joinFailed(i int, o proc.Outcome[*WorkItem], err error) (*WorkItem, Resolution) {
	log.Warn().Err(err).Int("worker", i).Stringer("outcome", o.Kind).Msg("join failed")
	c.Reporter.Printf("main: join(worker %d) failed: %v\n", i, err)
	c.Reporter.Printf("main: b[%d] will be reset to nil\n", i)
	if errors.Is(err, proc.ErrAlreadyJoined) || errors.Is(err, proc.ErrNoSuchThread) {
		return nil, ResultNotJoined
	}
	return nil, ResultJoinFailed
}

// resolve turns a join into the value of a result slot. Anything but a
// normal return leaves the slot empty.
func (c *Coordinator) resolve(i int, o proc.Outcome[*WorkItem], err error) (*WorkItem, Resolution) {
	if err != nil {
		return c.joinFailed(i, o, err)
	}
	if o.Kind != proc.NormalValue {
		out := 0
		if o.Value != nil {
			out = o.Value.Out
		}
		log.Warn().Int("worker", i).Stringer("outcome", o.Kind).Int("out", out).Msg("worker did not return normally")
		c.Reporter.Printf("main: join(worker %d) returned a %s exit value, out = %d\n", i, o.Kind, out)
		c.Reporter.Printf("main: b[%d] will be reset to nil\n", i)
		return nil, ResultForced
	}
	return o.Value, ResultPresent
}

func (c *Coordinator) printState(t *proc.Thread[*Report], tasks [NumWorkers]*proc.Task[*WorkItem], a [NumWorkers]WorkItem, b [NumWorkers]*WorkItem) {
	r := c.Reporter
	r.Printf("main: process id %d, thread id = %d\n", c.Process.PID(), t.ID())
	r.Printf("main: tid[0] = %d, tid[1] = %d\n", tasks[0].ID(), tasks[1].ID())
	r.Printf("main: &a[0] = %p, &a[1] = %p\n", c.Items[0], c.Items[1])
	r.Printf("main:  b[0] = %p,  b[1] = %p\n", b[0], b[1])
	r.Printf("main: a[0].in  = %d, a[1].in  = %d\n", a[0].In, a[1].In)
	r.Printf("main: a[0].out = %d, a[1].out = %d\n", a[0].Out, a[1].Out)
}

// printCanceledResult notes a canceled worker that still handed back a
// negative out.
func (c *Coordinator) printCanceledResult(tid int, b *WorkItem) {
	if b != nil && b.Out < 0 {
		c.Reporter.Printf("main: thread %d returned b[1].out = %d\n", tid, b.Out)
	}
}

func (c *Coordinator) printResults(b [NumWorkers]*WorkItem) {
	r := c.Reporter
	switch {
	case b[0] == nil && b[1] == nil:
		r.Printf("main: b[0] is nil, b[1] is nil\n")
	case b[0] == nil:
		r.Printf("main: b[0] is nil, b[1].in = %d, b[1].out = %d\n", b[1].In, b[1].Out)
	case b[1] == nil:
		r.Printf("main: b[0].in = %d, b[0].out = %d, b[1] is nil\n", b[0].In, b[0].Out)
	default:
		r.Printf("main: b[0].in  = %d, b[1].in  = %d\n", b[0].In, b[1].In)
		r.Printf("main: b[0].out = %d, b[1].out = %d\n", b[0].Out, b[1].Out)
	}
}
