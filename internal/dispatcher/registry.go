package dispatcher

import (
	"sort"
	"strings"
	"sync"

	"github.com/dshills/calcshell/internal/dispatcher/handler"
)

// Registry is the command table: one handler per case-normalized name.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]handler.Handler
}

// NewRegistry creates a new, empty command table.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]handler.Handler),
	}
}

// normalize folds a command name to its table key.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register binds name to h. The last registration wins: an existing
// binding is replaced and Register reports true.
func (r *Registry) Register(name string, h handler.Handler) (replaced bool) {
	key := normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.handlers[key]
	r.handlers[key] = h
	return replaced
}

// Unregister removes the binding for name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, normalize(name))
}

// Get returns the handler bound to name, or nil.
func (r *Registry) Get(name string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[normalize(name)]
}

// Has returns true if a handler is bound to name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[normalize(name)]
	return ok
}

// List returns all command names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
