package dispatcher

// State is the dispatcher's position in the read-eval cycle.
type State uint8

const (
	// StateIdle is awaiting input.
	StateIdle State = iota
	// StateParsing is tokenizing a line.
	StateParsing
	// StateDispatching is looking up the handler.
	StateDispatching
	// StateExecuting is running the handler and recording its result.
	StateExecuting
	// StateTerminated is reached only through quit.
	StateTerminated
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateDispatching:
		return "dispatching"
	case StateExecuting:
		return "executing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
