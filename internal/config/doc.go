// Package config loads, normalizes, and validates MAGF configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the MAGF_API_BIND environment
// fallback. The Config type centralizes the knobs the CLI, the player, and the
// catalog daemon need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
