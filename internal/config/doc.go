// Package config loads biaslab's TOML configuration. Defaults reproduce the
// fixed paths and constants of the research scripts, so running without a
// config file writes the same files to the same places.
package config
