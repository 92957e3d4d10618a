package model

import "fmt"

// WorkerState tracks where a worker is in its single run. States only move
// forward.
type WorkerState int32

const (
	Created WorkerState = iota
	Running
	Sleeping
	ForcedExit
	ProcessExit
	NormalReturn
	Cancelled
)

func (s WorkerState) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Sleeping:
		return "sleeping"
	case ForcedExit:
		return "forced-exit"
	case ProcessExit:
		return "process-exit"
	case NormalReturn:
		return "normal-return"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("WorkerState(%d)", int32(s))
}

// Terminal reports whether the worker has stopped for good.
func (s WorkerState) Terminal() bool {
	return s >= ForcedExit
}
