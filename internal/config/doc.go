// Package config loads calculator settings.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  5. Command Line Flags      │  ← Highest priority (applied by cmd/calc)
//	├─────────────────────────────┤
//	│  4. Environment Variables   │  ← CALC_*, LOG_LEVEL, LOG_FILE
//	├─────────────────────────────┤
//	│  3. .env File               │  ← never overrides the real environment
//	├─────────────────────────────┤
//	│  2. Config File             │  ← calc.toml / calc.yaml or --config
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A config file may be TOML or YAML, chosen by extension:
//
//	[logging]
//	level = "debug"
//
//	[history]
//	file = "data/calculation_history.csv"
//	invalid_records = "warn"
//
//	[plugins]
//	dir = "plugins"
//	autoload = ["factorial", "trig"]
//	timeout = "2s"
//
// # Basic Usage
//
//	cfg, err := config.Load(config.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//	// apply flag overrides here
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	store := history.Open(cfg.History.File)
package config
