package dispatcher

import "fmt"

// InvalidRecordPolicy decides what happens when a calculation cannot be
// recorded in history.
type InvalidRecordPolicy string

const (
	// PolicyDrop discards the record and logs at debug level.
	PolicyDrop InvalidRecordPolicy = "drop"
	// PolicyWarn discards the record and attaches a warning to the result.
	PolicyWarn InvalidRecordPolicy = "warn"
)

// ParseInvalidRecordPolicy parses a policy name. The empty string is drop.
func ParseInvalidRecordPolicy(s string) (InvalidRecordPolicy, error) {
	switch InvalidRecordPolicy(s) {
	case "", PolicyDrop:
		return PolicyDrop, nil
	case PolicyWarn:
		return PolicyWarn, nil
	default:
		return PolicyDrop, fmt.Errorf("unknown invalid-record policy %q (want drop or warn)", s)
	}
}

// Config holds dispatcher configuration options.
type Config struct {
	// EnableMetrics enables dispatch timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic wraps handler execution in panic recovery.
	RecoverFromPanic bool

	// InvalidRecords is the policy for calculations that fail history
	// validation.
	InvalidRecords InvalidRecordPolicy
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:    true,
		RecoverFromPanic: true,
		InvalidRecords:   PolicyDrop,
	}
}

// WithMetrics returns a copy of the config with metrics set.
func (c Config) WithMetrics(enabled bool) Config {
	c.EnableMetrics = enabled
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithInvalidRecords returns a copy of the config with the invalid-record
// policy set.
func (c Config) WithInvalidRecords(p InvalidRecordPolicy) Config {
	c.InvalidRecords = p
	return c
}
