// Package config loads, validates, and normalizes rcsup configuration.
//
// Configuration comes from an optional TOML file with environment variable
// overrides layered on top, matching the container deployment surface where
// RC credentials and list-file paths arrive via the environment.
package config
