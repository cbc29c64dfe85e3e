package dispatcher

import (
	"github.com/dshills/calcshell/internal/dispatcher/handler"
	"github.com/dshills/calcshell/internal/logging"
)

// PreDispatchHook is called after a line is parsed and before the handler
// is looked up. Returning false cancels the dispatch.
type PreDispatchHook interface {
	// PreDispatch may modify the command.
	PreDispatch(cmd *handler.Command) bool
}

// PostDispatchHook is called after a command has executed and its
// calculation, if any, has been recorded.
type PostDispatchHook interface {
	// PostDispatch may inspect or modify the result.
	PostDispatch(cmd *handler.Command, result *handler.Result)
}

// PreDispatchFunc is a function adapter for PreDispatchHook.
type PreDispatchFunc func(cmd *handler.Command) bool

// PreDispatch implements PreDispatchHook.
func (f PreDispatchFunc) PreDispatch(cmd *handler.Command) bool {
	return f(cmd)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(cmd *handler.Command, result *handler.Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(cmd *handler.Command, result *handler.Result) {
	f(cmd, result)
}

// LoggingHook logs every dispatch at debug level and failures at warn.
type LoggingHook struct {
	logger *logging.Logger
}

// NewLoggingHook creates a new logging hook.
func NewLoggingHook(logger *logging.Logger) *LoggingHook {
	return &LoggingHook{logger: logger.WithComponent("dispatch")}
}

// PreDispatch logs the command being dispatched.
func (h *LoggingHook) PreDispatch(cmd *handler.Command) bool {
	h.logger.Debug("dispatching %s (args=%d)", cmd.Name, len(cmd.Args))
	return true
}

// PostDispatch logs the dispatch result.
func (h *LoggingHook) PostDispatch(cmd *handler.Command, result *handler.Result) {
	if result.IsError() {
		h.logger.WithField("command", cmd.Name).Warn("%v", result.Error)
		return
	}
	h.logger.Debug("dispatch complete: %s -> %s", cmd.Name, result.Status)
}
