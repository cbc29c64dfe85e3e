package dispatcher

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/calcshell/internal/dispatcher/handler"
)

// Usage is the dispatch record of one command.
type Usage struct {
	Name   string
	Calls  uint64
	Errors uint64

	// Recorded counts calculations written to history; Unrecorded counts
	// calculations the store rejected as invalid.
	Recorded   uint64
	Unrecorded uint64

	Total time.Duration
	Last  time.Time
}

// Average returns the mean time spent per call.
func (u Usage) Average() time.Duration {
	if u.Calls == 0 {
		return 0
	}
	return u.Total / time.Duration(u.Calls)
}

// Summary aggregates usage over all commands.
type Summary struct {
	Commands   uint64
	Errors     uint64
	Panics     uint64
	Recorded   uint64
	Unrecorded uint64
	Total      time.Duration
}

// Average returns the mean time spent per command.
func (s Summary) Average() time.Duration {
	if s.Commands == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Commands)
}

// Metrics counts dispatches per command for the stats command.
// Unknown commands are not counted.
type Metrics struct {
	mu      sync.Mutex
	usage   map[string]*Usage
	summary Summary
	now     func() time.Time
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{
		usage: make(map[string]*Usage),
		now:   time.Now,
	}
}

func (m *Metrics) entry(name string) *Usage {
	u := m.usage[name]
	if u == nil {
		u = &Usage{Name: name}
		m.usage[name] = u
	}
	return u
}

// RecordDispatch counts one completed command.
func (m *Metrics) RecordDispatch(name string, d time.Duration, status handler.ResultStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.entry(name)
	u.Calls++
	u.Total += d
	u.Last = m.now()
	m.summary.Commands++
	m.summary.Total += d

	if status == handler.StatusError {
		u.Errors++
		m.summary.Errors++
	}
}

// RecordCalculation counts a calculation result and whether history
// accepted it.
func (m *Metrics) RecordCalculation(name string, recorded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.entry(name)
	if recorded {
		u.Recorded++
		m.summary.Recorded++
		return
	}
	u.Unrecorded++
	m.summary.Unrecorded++
}

// RecordPanic counts a recovered handler panic.
func (m *Metrics) RecordPanic(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.Panics++
}

// Summary returns the totals.
func (m *Metrics) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

// Usage returns the record for one command.
func (m *Metrics) Usage(name string) (Usage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.usage[name]
	if !ok {
		return Usage{}, false
	}
	return *u, true
}

// ByCalls returns up to n records, most called first and ties by name.
// A negative n returns all of them.
func (m *Metrics) ByCalls(n int) []Usage {
	m.mu.Lock()
	out := make([]Usage, 0, len(m.usage))
	for _, u := range m.usage {
		out = append(out, *u)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Name < out[j].Name
	})

	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Reset clears all counts.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.usage = make(map[string]*Usage)
	m.summary = Summary{}
}
