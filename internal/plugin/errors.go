package plugin

import "errors"

// Plugin system errors.
var (
	// ErrPluginNotFound is returned when a plugin cannot be located.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrInvalidPlugin is returned when a plugin cannot be loaded or
	// exposes no operations.
	ErrInvalidPlugin = errors.New("invalid plugin")

	// ErrInvalidName is returned for plugin names that could escape the
	// plugins directory.
	ErrInvalidName = errors.New("invalid plugin name")

	// ErrAlreadyRegistered is returned when a catalog unit name is taken.
	ErrAlreadyRegistered = errors.New("plugin already registered")
)
