package killer

// State is a step of one dispatch.
type State int

const (
	StateStart State = iota
	StateLocated
	StateLocalProbe
	StateRemote
	StateSignaled
	StateFlagged
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateLocated:
		return "LOCATED"
	case StateLocalProbe:
		return "LOCAL_PROBE"
	case StateRemote:
		return "REMOTE"
	case StateSignaled:
		return "SIGNALED"
	case StateFlagged:
		return "FLAGGED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSignaled || s == StateFlagged || s == StateFailed
}
