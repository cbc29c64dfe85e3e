package history

import (
	"sync"

	"github.com/dshills/calcshell/internal/logging"
)

// Store is an ordered calculation log mirrored to a CSV file.
type Store struct {
	mu      sync.Mutex
	path    string
	records []Record
	logger  *logging.Logger

	// degraded is set after a failed write; later changes stay in memory.
	degraded bool
	lastErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report persistence failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates a store backed by path and loads any existing records.
// Load failures are logged and leave the store empty; they are not returned.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: logging.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("history")

	s.records = s.load()
	return s
}

// load reads the backing file, returning an empty sequence on failure.
func (s *Store) load() []Record {
	records, skipped, err := readFile(s.path)
	if err != nil {
		s.lastErr = &PersistenceError{Op: "load", Path: s.path, Err: err}
		s.logger.Error("could not load history, starting empty: %v", s.lastErr)
		return []Record{}
	}
	if skipped > 0 {
		s.logger.Warn("skipped %d malformed history rows in %s", skipped, s.path)
	}
	s.logger.Debug("loaded %d history records from %s", len(records), s.path)
	if records == nil {
		records = []Record{}
	}
	return records
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Record validates r and, if valid, appends it and persists the log.
// Invalid records return ErrInvalidRecord and change nothing. Persistence
// failures are reported through the logger only.
func (s *Store) Record(r Record) error {
	if err := r.Validate(); err != nil {
		s.logger.Debug("dropping record: %v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)
	s.persist()
	return nil
}

// Clear removes all records and persists the empty log.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = []Record{}
	s.persist()
}

// All returns a copy of the records in insertion order.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Format returns the records rendered as a table.
func (s *Store) Format() string {
	return FormatTable(s.All())
}

// Degraded reports whether the store has stopped writing to disk.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// LastError returns the most recent persistence failure, if any. A
// successful write clears a failure left by loading.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// persist rewrites the backing file. Caller must hold s.mu.
func (s *Store) persist() {
	if s.degraded {
		return
	}
	if err := writeFile(s.path, s.records); err != nil {
		s.degraded = true
		s.lastErr = &PersistenceError{Op: "save", Path: s.path, Err: err}
		s.logger.Error("%v; history will be kept in memory for this session", s.lastErr)
		return
	}
	s.lastErr = nil
	s.logger.Debug("saved %d history records", len(s.records))
}
