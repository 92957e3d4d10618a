package model

import (
	"fmt"
	"io"

	"github.com/shamaton/msgpack/v2"
)

// Resolution is what the coordinator made of a join.
type Resolution int

const (
	ResultPresent Resolution = iota
	ResultJoinFailed
	ResultForced
	ResultNotJoined
)

func (r Resolution) String() string {
	switch r {
	case ResultPresent:
		return "present"
	case ResultJoinFailed:
		return "join-failed"
	case ResultForced:
		return "forced"
	case ResultNotJoined:
		return "not-joined"
	}
	return fmt.Sprintf("Resolution(%d)", int(r))
}

// Present reports whether the result slot holds the work item.
func (r Resolution) Present() bool {
	return r == ResultPresent
}

// Report is the coordinator's final view of a run. It only exists if the
// coordinator got as far as reporting.
type Report struct {
	RunID        string
	Mode         Mode
	PID          int
	MainThread   int
	Threads      [NumWorkers]int
	Items        [NumWorkers]WorkItem
	Results      [NumWorkers]Resolution
	Counter      int
	SemValue     int
	SemSupported bool
	Degraded     bool
}

// OutcomeRecord is the part of a run that doesn't depend on pids, thread ids
// or run ids, so equal records mean equal outcomes.
type OutcomeRecord struct {
	Mode     Mode
	ExitCode int
	Exited   bool
	Reported bool
	Counter  int
	Results  [NumWorkers]Resolution
	OutSigns [NumWorkers]int
	States   [NumWorkers]WorkerState
}

func (o *OutcomeRecord) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, o)
}

func (o *OutcomeRecord) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, o)
}

func (o *OutcomeRecord) String() string {
	s := fmt.Sprintf("counter=%d", o.Counter)
	for i := 0; i < NumWorkers; i++ {
		s += fmt.Sprintf(" w%d=%s/out%s", i, o.States[i], signString(o.OutSigns[i]))
	}
	if o.Reported {
		s += fmt.Sprintf(" results=%s,%s", o.Results[0], o.Results[1])
	} else {
		s += " unreported"
	}
	if o.Exited {
		s += fmt.Sprintf(" exit(%d)", o.ExitCode)
	}
	return s
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func signString(s int) string {
	switch s {
	case 1:
		return "+"
	case -1:
		return "-"
	}
	return "0"
}
