package player

import "errors"

// State is a player lifecycle state.
type State int32

const (
	Idle State = iota
	Loading
	Ready
	Playing
	Paused
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrLoadInProgress is returned by Load while another load is running.
	ErrLoadInProgress = errors.New("player: load already in progress")
	// ErrNotReady is returned by Play and Restart before a successful load.
	ErrNotReady = errors.New("player: no container loaded")
	// ErrClosed is returned by Load after Close.
	ErrClosed = errors.New("player: closed")
)
