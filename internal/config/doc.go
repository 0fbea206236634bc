// Package config loads, normalizes, and validates stanza configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STANZA_API_TOKEN. The Config type centralizes every knob the API server
// and CLI need: where the catalog database and uploaded audio live, the
// timing editor constants, and the external media tools.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
