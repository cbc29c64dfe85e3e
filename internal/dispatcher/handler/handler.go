// Package handler provides the handler interface and types for command dispatch.
package handler

// Command is one parsed input line.
type Command struct {
	// Name is the lower-cased command word.
	Name string

	// Args holds the remaining whitespace-separated tokens, unconverted.
	Args []string

	// Line is the raw input line.
	Line string
}

// Arg returns the i-th argument or "" if absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Handler executes one command.
type Handler interface {
	// Handle executes the command and returns a result.
	Handle(cmd Command) Result
}

// Describer is implemented by handlers that carry help text.
type Describer interface {
	Description() string
}

// HandlerFunc is a function adapter for Handler interface.
type HandlerFunc func(cmd Command) Result

// Handle implements Handler.Handle.
func (f HandlerFunc) Handle(cmd Command) Result {
	if f == nil {
		return Errorf("handler function is nil")
	}
	return f(cmd)
}

// SimpleHandler wraps a function with help text.
type SimpleHandler struct {
	// Usage is shown by the help and menu commands.
	Usage string

	// Fn is the function to execute.
	Fn func(cmd Command) Result
}

// NewSimpleHandler creates a SimpleHandler.
func NewSimpleHandler(usage string, fn func(cmd Command) Result) *SimpleHandler {
	return &SimpleHandler{Usage: usage, Fn: fn}
}

// Handle implements Handler.Handle.
func (h *SimpleHandler) Handle(cmd Command) Result {
	if h.Fn == nil {
		return Errorf("handler function is nil")
	}
	return h.Fn(cmd)
}

// Description implements Describer.
func (h *SimpleHandler) Description() string {
	return h.Usage
}

// Describe returns h's help text, or "" if it has none.
func Describe(h Handler) string {
	if d, ok := h.(Describer); ok {
		return d.Description()
	}
	return ""
}
