package scan

import "sync/atomic"

// State is the lifecycle state of a scan session.
// It is owned by the session; the frame pipeline only reads it to decide
// whether to keep submitting frames.
type State int32

const (
	// StateIdle is the initial state before Begin.
	StateIdle State = iota

	// StateRunning means the camera is live and frames are being submitted.
	StateRunning

	// StateFinishing means a terminal outcome has been chosen and the
	// camera is being torn down. No further frames are recognized.
	StateFinishing

	// StateStopped means the camera has halted and the result has been
	// delivered. No transition leaves this state.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinishing:
		return "finishing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// stateMachine is an atomic holder for State.
// CompareAndSwap is the mechanism behind the first-wins race between the
// candidate and cancel paths.
type stateMachine struct {
	v atomic.Int32
}

func (m *stateMachine) Load() State {
	return State(m.v.Load())
}

func (m *stateMachine) Store(s State) {
	m.v.Store(int32(s))
}

func (m *stateMachine) CompareAndSwap(old, new State) bool {
	return m.v.CompareAndSwap(int32(old), int32(new))
}
