package dispatcher

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dshills/calcshell/internal/dispatcher/handler"
	"github.com/dshills/calcshell/internal/history"
	"github.com/dshills/calcshell/internal/logging"
	"github.com/dshills/calcshell/internal/plugin"
)

// Dispatcher parses input lines and executes the bound handlers.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry
	store    *history.Store
	loader   *plugin.Loader
	logger   *logging.Logger

	config  Config
	metrics *Metrics

	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook

	state State
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLoader sets the plugin loader used by load_plugin.
func WithLoader(l *plugin.Loader) Option {
	return func(d *Dispatcher) {
		d.loader = l
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a dispatcher that records into store and registers the
// built-in commands.
func New(config Config, store *history.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		store:    store,
		logger:   logging.Discard,
		config:   config,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithComponent("dispatcher")

	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}

	d.registerBuiltins()
	return d
}

// Registry returns the command table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Store returns the history store.
func (d *Dispatcher) Store() *history.Store {
	return d.store
}

// Loader returns the plugin loader, or nil.
func (d *Dispatcher) Loader() *plugin.Loader {
	return d.loader
}

// Metrics returns the metrics collector, or nil if metrics are disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// State returns the current dispatch state.
func (d *Dispatcher) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Terminated reports whether quit has been executed.
func (d *Dispatcher) Terminated() bool {
	return d.State() == StateTerminated
}

func (d *Dispatcher) setState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

// Parse splits line into a command. It returns false for blank lines.
func Parse(line string) (handler.Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return handler.Command{}, false
	}
	return handler.Command{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
		Line: line,
	}, true
}

// Execute runs one input line to completion, including its history
// write. Blank lines return a no-op result. Handler errors and panics are
// returned as error results; they never end the session.
func (d *Dispatcher) Execute(line string) handler.Result {
	if d.Terminated() {
		return handler.Error(ErrTerminated)
	}

	d.setState(StateParsing)
	cmd, ok := Parse(line)
	if !ok {
		d.setState(StateIdle)
		return handler.NoOp()
	}

	result := d.dispatch(&cmd)

	if result.IsQuit() {
		d.setState(StateTerminated)
	} else {
		d.setState(StateIdle)
	}
	return result
}

// dispatch looks up and executes cmd.
func (d *Dispatcher) dispatch(cmd *handler.Command) handler.Result {
	startTime := time.Now()

	if !d.runPreHooks(cmd) {
		return handler.NoOp()
	}

	d.setState(StateDispatching)
	h := d.registry.Get(cmd.Name)
	if h == nil {
		result := handler.Error(fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name))
		d.runPostHooks(cmd, &result)
		return result
	}

	d.setState(StateExecuting)
	var result handler.Result
	if d.config.RecoverFromPanic {
		result = d.executeWithRecovery(h, *cmd)
	} else {
		result = h.Handle(*cmd)
	}

	if result.IsOK() && result.Calculation != nil {
		d.record(&result)
	}

	d.runPostHooks(cmd, &result)

	if d.metrics != nil {
		d.metrics.RecordDispatch(cmd.Name, time.Since(startTime), result.Status)
	}
	return result
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, cmd handler.Command) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			d.logger.Error("handler panic for %s: %v\n%s", cmd.Name, r, stack[:n])

			result = handler.Error(fmt.Errorf("%w in %s: %v", ErrPanic, cmd.Name, r))

			if d.metrics != nil {
				d.metrics.RecordPanic(cmd.Name)
			}
		}
	}()

	return h.Handle(cmd)
}

// record appends the result's calculation to history, applying the
// invalid-record policy.
func (d *Dispatcher) record(result *handler.Result) {
	c := result.Calculation
	a, b := history.NoOperand, history.NoOperand
	if len(c.Operands) > 0 {
		a = c.Operands[0]
	}
	if len(c.Operands) > 1 {
		b = c.Operands[1]
	}

	err := d.store.Record(history.NewRecord(c.Operation, a, b, c.Value))
	if d.metrics != nil {
		d.metrics.RecordCalculation(c.Operation, err == nil)
	}
	if err == nil {
		return
	}
	if !errors.Is(err, history.ErrInvalidRecord) {
		d.logger.Error("recording %s: %v", c.Operation, err)
		return
	}

	switch d.config.InvalidRecords {
	case PolicyWarn:
		d.logger.Warn("calculation not recorded: %v", err)
		result.Message = fmt.Sprintf("Warning: calculation not recorded in history (%v)", err)
	default:
		d.logger.Debug("calculation not recorded: %v", err)
	}
}

// Register binds name to h. An existing binding is replaced and the
// override is logged.
func (d *Dispatcher) Register(name string, h handler.Handler) (replaced bool) {
	replaced = d.registry.Register(name, h)
	if replaced {
		d.logger.Info("command %s overridden", normalize(name))
	}
	return replaced
}

// RegisterFunc binds name to fn with help text.
func (d *Dispatcher) RegisterFunc(name, usage string, fn func(cmd handler.Command) handler.Result) bool {
	return d.Register(name, handler.NewSimpleHandler(usage, fn))
}

// RegisterOperation binds op through the operation adapter.
func (d *Dispatcher) RegisterOperation(op plugin.Operation) bool {
	return d.Register(op.Name, NewOperationHandler(op))
}

// LoadPlugin loads name and merges its operations into the command table.
// It returns the loaded plugin and the command names it overrode.
func (d *Dispatcher) LoadPlugin(name string) (*plugin.Loaded, []string, error) {
	if d.loader == nil {
		return nil, nil, ErrNoLoader
	}

	previous, _ := d.loader.Get(name)
	loaded, err := d.loader.Load(name)
	if err != nil {
		return nil, nil, err
	}

	var overridden []string
	current := make(map[string]bool, len(loaded.Operations))
	for _, op := range loaded.Operations {
		current[normalize(op.Name)] = true
		if d.RegisterOperation(op) {
			overridden = append(overridden, normalize(op.Name))
		}
	}
	if previous != nil {
		d.dropStale(previous, current)
	}
	return loaded, overridden, nil
}

// dropStale unregisters commands a reload no longer provides, as long as
// they are still bound to the earlier load.
func (d *Dispatcher) dropStale(previous *plugin.Loaded, current map[string]bool) {
	for _, op := range previous.Operations {
		name := normalize(op.Name)
		if current[name] {
			continue
		}
		h, ok := d.registry.Get(name).(*OperationHandler)
		if !ok || h.Op.Description != op.Description {
			continue
		}
		d.registry.Unregister(name)
		d.logger.Info("command %s removed: no longer provided by plugin %s", name, previous.Name)
	}
}

// RegisterPreHook registers a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(hook PreDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preHooks = append(d.preHooks, hook)
}

// RegisterPostHook registers a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

// runPreHooks runs all pre-dispatch hooks.
// Returns false if any hook cancels the command.
func (d *Dispatcher) runPreHooks(cmd *handler.Command) bool {
	d.mu.RLock()
	hooks := make([]PreDispatchHook, len(d.preHooks))
	copy(hooks, d.preHooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreDispatch(cmd) {
			return false
		}
	}
	return true
}

// runPostHooks runs all post-dispatch hooks.
func (d *Dispatcher) runPostHooks(cmd *handler.Command, result *handler.Result) {
	d.mu.RLock()
	hooks := make([]PostDispatchHook, len(d.postHooks))
	copy(hooks, d.postHooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(cmd, result)
	}
}
