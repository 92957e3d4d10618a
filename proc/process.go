package proc

import (
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// A Process owns a set of threads and decides when the program ends. A real
// process hands its exit code to os.Exit. A simulated one (no exit function)
// records the code and stops every thread that touches it afterwards, which
// lets tests and sweeps drive the process-exit paths without dying.
type Process struct {
	pid    int
	stdout *gate
	exitFn func(int)

	live   sync.WaitGroup
	nextID atomic.Int64

	mu     sync.Mutex
	exited bool
	code   int
	done   chan struct{}
}

type Option func(*Process)

// WithExitFunc makes Exit call fn, typically os.Exit.
func WithExitFunc(fn func(int)) Option {
	return func(p *Process) {
		p.exitFn = fn
	}
}

func WithPID(pid int) Option {
	return func(p *Process) {
		p.pid = pid
	}
}

func New(stdout io.Writer, opts ...Option) *Process {
	p := &Process{
		pid:    os.Getpid(),
		stdout: &gate{w: stdout},
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Process) PID() int {
	return p.pid
}

// Stdout is the process output. Writes are serialized and silently dropped
// once the process has exited.
func (p *Process) Stdout() io.Writer {
	return p.stdout
}

// Done is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Exited reports whether Exit was called, and with which code.
func (p *Process) Exited() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code, p.exited
}

// Exit terminates the whole process. It never returns to the caller.
func (p *Process) Exit(code int) {
	p.mu.Lock()
	first := !p.exited
	if first {
		p.exited = true
		p.code = code
		p.stdout.close()
		close(p.done)
	}
	p.mu.Unlock()
	if first {
		log.Debug().Int("pid", p.pid).Int("code", code).Msg("process exit")
	}
	if p.exitFn != nil {
		p.exitFn(code)
	}
	runtime.Goexit()
}

// halt stops the calling thread if the process is gone.
func (p *Process) halt() {
	select {
	case <-p.done:
		runtime.Goexit()
	default:
	}
}

// Wait blocks until every thread has ended or the process exited, and returns
// the exit status.
func (p *Process) Wait() int {
	all := make(chan struct{})
	go func() {
		p.live.Wait()
		close(all)
	}()
	select {
	case <-all:
	case <-p.done:
	}
	code, _ := p.Exited()
	return code
}

// Drain waits for every thread to stop. After a simulated exit the remaining
// threads halt at their next sleep or join, so Drain returns shortly after.
func (p *Process) Drain() {
	p.live.Wait()
}

type gate struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

func (g *gate) Write(b []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return len(b), nil
	}
	return g.w.Write(b)
}

func (g *gate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}
