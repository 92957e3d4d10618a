package model

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/exitpaths/cas"
	"github.com/timewinder-dev/exitpaths/proc"
)

func init() {
	cas.Register("OutcomeRecord", &OutcomeRecord{})
}

type RunOptions struct {
	// Output receives the diagnostic lines. Nil discards them.
	Output io.Writer
	Color  bool
	// CounterYield is handed to the shared counter.
	CounterYield func()
	// ExitFunc, when set, makes the process real: it is called with the exit
	// code instead of simulating the exit.
	ExitFunc func(int)
}

func newReporter(w io.Writer, colored bool) Reporter {
	if colored {
		return &ColorReporter{Writer: w}
	}
	return &PlainReporter{Writer: w}
}

// Run executes one run in a process and returns its exit status, along with
// the coordinator's report if it got that far.
func Run(spec *RunSpec, opts RunOptions) (int, *Report) {
	p, c := newRun(spec, opts)
	c.Start()
	code := p.Wait()
	return code, c.Report()
}

func newRun(spec *RunSpec, opts RunOptions) (*proc.Process, *Coordinator) {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	var popts []proc.Option
	if opts.ExitFunc != nil {
		popts = append(popts, proc.WithExitFunc(opts.ExitFunc))
	}
	p := proc.New(out, popts...)
	c := NewCoordinator(p, spec, newReporter(p.Stdout(), opts.Color))
	c.CounterYield = opts.CounterYield
	return p, c
}

// RunResult is what a simulated run leaves behind once every thread has
// stopped.
type RunResult struct {
	ExitCode int
	Exited   bool
	Report   *Report
	Items    [NumWorkers]WorkItem
	States   [NumWorkers]WorkerState
	Counter  int
	Elapsed  time.Duration
}

// RunSimulated executes one run in a simulated process. Process exits are
// recorded rather than performed, and the call returns after every thread
// has stopped, so the result is safe to inspect.
func RunSimulated(spec *RunSpec, opts RunOptions) *RunResult {
	opts.ExitFunc = nil
	p, c := newRun(spec, opts)

	start := time.Now()
	c.Start()
	code := p.Wait()
	elapsed := time.Since(start)
	p.Drain()

	res := &RunResult{
		ExitCode: code,
		Report:   c.Report(),
		Elapsed:  elapsed,
	}
	_, res.Exited = p.Exited()
	for i := range c.Items {
		res.Items[i] = *c.Items[i]
		if c.Workers[i] != nil {
			res.States[i] = c.Workers[i].State()
		}
	}
	if c.Counter != nil {
		v, err := c.Counter.Load(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("reading counter after run")
		}
		res.Counter = v
	}
	return res
}

func (r *RunResult) Record(mode Mode) *OutcomeRecord {
	rec := &OutcomeRecord{
		Mode:     mode,
		ExitCode: r.ExitCode,
		Exited:   r.Exited,
		Reported: r.Report != nil,
		Counter:  r.Counter,
		States:   r.States,
	}
	for i := range r.Items {
		rec.OutSigns[i] = sign(r.Items[i].Out)
	}
	if r.Report != nil {
		rec.Results = r.Report.Results
	}
	return rec
}

// SweepResult collects the distinct outcomes of repeated runs.
type SweepResult struct {
	Mode    Mode
	Runs    int
	Store   *cas.MemoryCAS
	Counts  map[cas.Hash]int
	Elapsed time.Duration
}

type SweepOutcome struct {
	Hash   cas.Hash
	Count  int
	Record *OutcomeRecord
}

// Sweep runs spec in simulated processes runs times and groups the outcomes.
func Sweep(spec *RunSpec, runs int, opts RunOptions) (*SweepResult, error) {
	s := &SweepResult{
		Mode:   spec.Mode,
		Store:  cas.NewMemoryCAS(),
		Counts: make(map[cas.Hash]int),
	}
	start := time.Now()
	for i := 0; i < runs; i++ {
		res := RunSimulated(spec, opts)
		h, err := s.Store.Put(res.Record(spec.Mode))
		if err != nil {
			return nil, err
		}
		s.Counts[h]++
		s.Runs++
		log.Debug().Int("run", i).Uint64("outcome", uint64(h)).Dur("elapsed", res.Elapsed).Msg("sweep run done")
	}
	s.Elapsed = time.Since(start)
	return s, nil
}

// Outcomes returns the distinct outcomes, most frequent first.
func (s *SweepResult) Outcomes() ([]SweepOutcome, error) {
	var out []SweepOutcome
	for _, h := range s.Store.Hashes() {
		rec, err := cas.Retrieve[*OutcomeRecord](s.Store, h)
		if err != nil {
			return nil, err
		}
		out = append(out, SweepOutcome{Hash: h, Count: s.Counts[h], Record: rec})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}
