package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/calcshell/internal/dispatcher"
	"github.com/dshills/calcshell/internal/logging"
)

// Config holds all calculator settings.
type Config struct {
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Plugins PluginsConfig `toml:"plugins" yaml:"plugins"`
	Journal JournalConfig `toml:"journal" yaml:"journal"`
	REPL    REPLConfig    `toml:"repl" yaml:"repl"`

	// Warnings lists environment values that were replaced by a fallback
	// during Load. They are meant for the logger once it exists.
	Warnings []string `toml:"-" yaml:"-"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// File receives log output when set; otherwise logs go to stderr.
	File string `toml:"file" yaml:"file"`
}

// HistoryConfig controls the calculation history log.
type HistoryConfig struct {
	File string `toml:"file" yaml:"file"`
	// InvalidRecords is drop or warn.
	InvalidRecords string `toml:"invalid_records" yaml:"invalid_records"`
}

// PluginsConfig controls plugin discovery and loading.
type PluginsConfig struct {
	Dir string `toml:"dir" yaml:"dir"`
	// Autoload names plugins loaded at startup.
	Autoload []string `toml:"autoload" yaml:"autoload"`
	// Timeout bounds each call into a script plugin.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// JournalConfig controls the input-line journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	File    string `toml:"file" yaml:"file"`
}

// REPLConfig controls the interactive prompt.
type REPLConfig struct {
	Prompt string `toml:"prompt" yaml:"prompt"`
	// ForcePrompt prints the prompt even when input is not a terminal.
	ForcePrompt bool `toml:"force_prompt" yaml:"force_prompt"`
}

// Duration is a time.Duration that decodes from strings such as "2s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			File:           "data/calculation_history.csv",
			InvalidRecords: string(dispatcher.PolicyDrop),
		},
		Plugins: PluginsConfig{
			Dir:     "plugins",
			Timeout: Duration(5 * time.Second),
		},
		Journal: JournalConfig{
			Enabled: false,
			File:    "data/journal.db",
		},
		REPL: REPLConfig{
			Prompt: ">> ",
		},
	}
}

// Validate checks every setting and returns all failures joined.
func (c Config) Validate() error {
	var errs []error

	if _, ok := logging.LookupLogLevel(c.Logging.Level); !ok {
		errs = append(errs, &ValidationError{Path: "logging.level", Value: c.Logging.Level, Message: "want debug, info, warn or error"})
	}
	if _, err := dispatcher.ParseInvalidRecordPolicy(c.History.InvalidRecords); err != nil {
		errs = append(errs, &ValidationError{Path: "history.invalid_records", Value: c.History.InvalidRecords, Message: "want drop or warn"})
	}
	if c.History.File == "" {
		errs = append(errs, &ValidationError{Path: "history.file", Value: `""`, Message: "must not be empty"})
	}
	if c.Plugins.Timeout < 0 {
		errs = append(errs, &ValidationError{Path: "plugins.timeout", Value: c.Plugins.Timeout.Std(), Message: "must not be negative"})
	}
	if c.Journal.Enabled && c.Journal.File == "" {
		errs = append(errs, &ValidationError{Path: "journal.file", Value: `""`, Message: "required when the journal is enabled"})
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the parsed logging level.
func (c Config) LogLevel() logging.LogLevel {
	return logging.ParseLogLevel(c.Logging.Level)
}

// InvalidRecordPolicy returns the parsed invalid-record policy.
func (c Config) InvalidRecordPolicy() dispatcher.InvalidRecordPolicy {
	p, _ := dispatcher.ParseInvalidRecordPolicy(c.History.InvalidRecords)
	return p
}
