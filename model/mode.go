package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how the coordinator and the workers end.
type Mode int

const (
	ModeJoin                Mode = iota // join both workers, return
	ModeMainThreadExit                  // coordinator thread exits after spawning
	ModeMainProcessExit                 // coordinator exits the process after spawning
	ModeCancel                          // coordinator cancels worker 1
	ModeWorkerThreadExit                // workers take the forced exit path
	ModeWorkerProcessExit               // workers exit the process
	ModeMainThreadExitLate              // coordinator thread exits after reporting
	ModeMainProcessExitLate             // coordinator exits the process after reporting

	numModes
)

// Modes lists every mode in order.
func Modes() []Mode {
	out := make([]Mode, 0, numModes)
	for m := ModeJoin; m < numModes; m++ {
		out = append(out, m)
	}
	return out
}

func (m Mode) Valid() bool {
	return m >= ModeJoin && m < numModes
}

func (m Mode) String() string {
	switch m {
	case ModeJoin:
		return "join"
	case ModeMainThreadExit:
		return "main-thread-exit"
	case ModeMainProcessExit:
		return "main-process-exit"
	case ModeCancel:
		return "cancel"
	case ModeWorkerThreadExit:
		return "worker-thread-exit"
	case ModeWorkerProcessExit:
		return "worker-process-exit"
	case ModeMainThreadExitLate:
		return "main-thread-exit-late"
	case ModeMainProcessExitLate:
		return "main-process-exit-late"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Description is the one-line explanation shown by the modes command.
func (m Mode) Description() string {
	switch m {
	case ModeJoin:
		return "main joins both workers and returns"
	case ModeMainThreadExit:
		return "main exits its own thread right after spawning; workers keep the process alive"
	case ModeMainProcessExit:
		return "main exits the process right after spawning"
	case ModeCancel:
		return "main cancels worker 1, then joins both"
	case ModeWorkerThreadExit:
		return "workers exit their thread with a negated id as result"
	case ModeWorkerProcessExit:
		return "the first worker to finish exits the process"
	case ModeMainThreadExitLate:
		return "main exits its own thread after reporting"
	case ModeMainProcessExitLate:
		return "main exits the process after reporting"
	}
	return "unknown"
}

// ParseMode reads a mode from a command line argument. Anything that isn't an
// integer in range gives ModeJoin, and ok is false.
func ParseMode(s string) (m Mode, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return ModeJoin, false
	}
	m = Mode(n)
	if !m.Valid() {
		return ModeJoin, false
	}
	return m, true
}
