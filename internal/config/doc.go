// Package config loads and validates the tickerd YAML configuration.
//
// Loading order: read file, expand ${VAR} environment references, apply
// defaults for anything unset, validate. A missing config file is not an
// error at the call site; main falls back to Default().
package config
