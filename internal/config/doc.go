// Package config loads, normalizes, and validates subforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SUBFORGE_LOG_LEVEL
// environment override. Config centralizes the undo depth, autosave
// directory and retention, output time precision, style catalogue location
// and log settings the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
