package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/calcshell/internal/logging"
)

// DefaultFiles are the config files searched in the working directory when
// no path is given, in order.
var DefaultFiles = []string{"calc.toml", "calc.yaml", "calc.yml"}

// LoadOptions controls which sources Load reads.
type LoadOptions struct {
	// Path is an explicit config file. It must exist when set.
	Path string

	// Dir is searched for DefaultFiles and .env when Path is empty.
	// Defaults to the working directory.
	Dir string

	// EnvFile is the dotenv file. Defaults to Dir/.env; a missing file is
	// ignored.
	EnvFile string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, the config file, the .env file and
// the environment. The result is not validated; callers apply their own
// overrides first and then call Validate.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	path, err := opts.configPath()
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	dotenv, err := readEnvFile(opts.envFile())
	if err != nil {
		return cfg, err
	}

	// The .env pass runs first so any variable set in the real
	// environment, under either name, replaces it.
	err = ApplyEnv(&cfg, func(key string) (string, bool) {
		v, ok := dotenv[key]
		return v, ok
	})
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, opts.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (o LoadOptions) configPath() (string, error) {
	if o.Path != "" {
		if _, err := os.Stat(o.Path); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrFileNotFound, o.Path)
			}
			return "", fmt.Errorf("reading config file %s: %w", o.Path, err)
		}
		return o.Path, nil
	}

	for _, name := range DefaultFiles {
		path := filepath.Join(o.Dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func (o LoadOptions) envFile() string {
	if o.EnvFile != "" {
		return o.EnvFile
	}
	return filepath.Join(o.Dir, ".env")
}

// readEnvFile parses a dotenv file. A missing file yields no values.
func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return values, nil
}

// LoadFile decodes the file at path over cfg. Settings the file omits keep
// their current values. The format is chosen by extension.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			pe := &ParseError{Path: path, Message: err.Error(), Err: err}
			var decodeErr *toml.DecodeError
			if errors.As(err, &decodeErr) {
				pe.Line, _ = decodeErr.Position()
			}
			return pe
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// envBinding maps environment variables onto one setting. The first
// variable present wins.
type envBinding struct {
	names []string
	apply func(cfg *Config, value string) error
}

func envBindings() []envBinding {
	str := func(dst func(*Config) *string) func(*Config, string) error {
		return func(cfg *Config, v string) error {
			*dst(cfg) = v
			return nil
		}
	}

	return []envBinding{
		{[]string{"CALC_LOG_LEVEL", "LOG_LEVEL"}, func(c *Config, v string) error {
			if _, ok := logging.LookupLogLevel(v); !ok {
				c.Warnings = append(c.Warnings, fmt.Sprintf("unknown log level %q, using info", v))
				v = "info"
			}
			c.Logging.Level = v
			return nil
		}},
		{[]string{"CALC_LOG_FILE", "LOG_FILE"}, str(func(c *Config) *string { return &c.Logging.File })},
		{[]string{"CALC_HISTORY_FILE"}, str(func(c *Config) *string { return &c.History.File })},
		{[]string{"CALC_HISTORY_INVALID_RECORDS"}, str(func(c *Config) *string { return &c.History.InvalidRecords })},
		{[]string{"CALC_PLUGINS_DIR"}, str(func(c *Config) *string { return &c.Plugins.Dir })},
		{[]string{"CALC_PLUGINS_AUTOLOAD"}, func(c *Config, v string) error {
			c.Plugins.Autoload = splitList(v)
			return nil
		}},
		{[]string{"CALC_PLUGINS_TIMEOUT"}, func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.Plugins.Timeout = Duration(d)
			return nil
		}},
		{[]string{"CALC_JOURNAL_ENABLED"}, func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Journal.Enabled = b
			return nil
		}},
		{[]string{"CALC_JOURNAL_FILE"}, str(func(c *Config) *string { return &c.Journal.File })},
		{[]string{"CALC_PROMPT"}, str(func(c *Config) *string { return &c.REPL.Prompt })},
	}
}

// ApplyEnv overrides cfg with environment values read through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings() {
		for _, name := range b.names {
			v, ok := lookup(name)
			if !ok {
				continue
			}
			if err := b.apply(cfg, v); err != nil {
				return &ParseError{Path: name, Message: err.Error(), Err: err}
			}
			break
		}
	}
	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
