// Package config loads, validates, and watches the spendgate
// configuration.
//
// Configuration is YAML with environment variable overrides. The loading
// sequence is:
//
//  1. Parse YAML from file
//  2. Apply default values
//  3. Apply SPENDGATE_* environment overrides
//  4. Validate the final configuration
//
// Validation is strict about the budgeting section: a zero bucket width or
// zero window would make bucket and window arithmetic degenerate, so such
// configurations are rejected at load time rather than tolerated at
// runtime.
//
// The Watcher reloads the file on change, with debouncing so editors that
// write multiple events per save trigger a single reload.
package config
