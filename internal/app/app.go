package app

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/dshills/calcshell/internal/config"
	"github.com/dshills/calcshell/internal/dispatcher"
	"github.com/dshills/calcshell/internal/history"
	"github.com/dshills/calcshell/internal/journal"
	"github.com/dshills/calcshell/internal/logging"
	"github.com/dshills/calcshell/internal/plugin"
	"github.com/dshills/calcshell/internal/plugin/builtin"
)

// Application is a configured calculator session.
type Application struct {
	cfg     config.Config
	logger  *logging.Logger
	session string

	store      *history.Store
	loader     *plugin.Loader
	journal    *journal.Journal
	dispatcher *dispatcher.Dispatcher

	in          io.Reader
	out         io.Writer
	interactive bool
	styles      styles

	running atomic.Bool
}

// Options configures New.
type Options struct {
	// Config holds the loaded settings.
	Config config.Config

	// Logger receives diagnostics. Defaults to logging.Discard.
	Logger *logging.Logger

	// In and Out are the REPL streams. Default to os.Stdin and os.Stdout.
	In  io.Reader
	Out io.Writer

	// Catalog holds compiled-in plugins. Defaults to the builtin units.
	Catalog *plugin.Catalog

	// SessionID tags journal entries and log lines. Defaults to a new UUID.
	SessionID string
}

// New creates the application: history store, plugin loader, journal and
// dispatcher, then loads the autoload plugins.
func New(opts Options) (*Application, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	app := &Application{
		cfg:         opts.Config,
		logger:      opts.Logger.WithField("session", opts.SessionID),
		session:     opts.SessionID,
		in:          opts.In,
		out:         opts.Out,
		interactive: isTerminal(opts.In),
		styles:      newStyles(lipgloss.NewRenderer(opts.Out)),
	}

	if err := app.bootstrap(opts); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap(opts Options) error {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = plugin.NewCatalog()
		if err := builtin.Register(catalog); err != nil {
			return &InitError{Component: "plugins", Err: err}
		}
	}

	app.store = history.Open(app.cfg.History.File, history.WithLogger(app.logger))

	app.loader = plugin.NewLoader(
		plugin.WithCatalog(catalog),
		plugin.WithDir(app.cfg.Plugins.Dir),
		plugin.WithTimeout(app.cfg.Plugins.Timeout.Std()),
		plugin.WithLogger(app.logger),
	)

	if app.cfg.Journal.Enabled {
		j, err := journal.Open(app.cfg.Journal.File, app.session)
		if err != nil {
			return &InitError{Component: "journal", Err: err}
		}
		app.journal = j
	}

	dcfg := dispatcher.DefaultConfig().WithInvalidRecords(app.cfg.InvalidRecordPolicy())
	app.dispatcher = dispatcher.New(dcfg, app.store,
		dispatcher.WithLoader(app.loader),
		dispatcher.WithLogger(app.logger),
	)
	app.wireDispatcher()

	app.autoload()
	return nil
}

// wireDispatcher registers hooks and app-level commands.
func (app *Application) wireDispatcher() {
	logHook := dispatcher.NewLoggingHook(app.logger)
	app.dispatcher.RegisterPreHook(logHook)
	app.dispatcher.RegisterPostHook(logHook)

	if app.journal != nil {
		app.dispatcher.RegisterPreHook(dispatcher.PreDispatchFunc(app.journalLine))
		app.dispatcher.RegisterFunc("journal", "journal [n]: show the last n entered lines (default 10)", app.cmdJournal)
	}
}

// autoload loads the configured plugins. Failures are logged, not fatal.
func (app *Application) autoload() {
	for _, name := range app.cfg.Plugins.Autoload {
		if _, _, err := app.dispatcher.LoadPlugin(name); err != nil {
			app.logger.Warn("autoload %s: %v", name, err)
		}
	}
}

// Dispatcher returns the command dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Store returns the history store.
func (app *Application) Store() *history.Store {
	return app.store
}

// Session returns the session id.
func (app *Application) Session() string {
	return app.session
}

// Shutdown releases plugin states and the journal. It is safe to call
// more than once.
func (app *Application) Shutdown() {
	if app.loader != nil {
		if err := app.loader.Close(); err != nil {
			app.logger.Warn("closing plugins: %v", err)
		}
		app.loader = nil
	}
	if app.journal != nil {
		if err := app.journal.Close(); err != nil {
			app.logger.Warn("closing journal: %v", err)
		}
		app.journal = nil
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
