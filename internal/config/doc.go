// Package config loads, normalizes, and validates mediatidy configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEDIATIDY_LOG_DIR and MEDIATIDY_DOWNLOAD_LOG_DIR. The Config type holds
// every knob the CLI needs so commands discover the journal, lock and log
// locations in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
