// Package config handles configuration management for bootstrap.
// It layers the embedded defaults, an optional user TOML file under the
// XDG config directory and BOOTSTRAP_* environment variables.
package config
