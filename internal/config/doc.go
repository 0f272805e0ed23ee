// Package config loads, validates, and normalizes the TOML
// configuration for segue: skip correlation behavior, provider
// endpoints and credentials, cache locations, and logging.
package config
