// Package config holds the explicit configuration for an indexing run.
//
// Values come from DefaultConfig, an optional YAML file, and environment
// variables, in increasing order of precedence. API keys are only read
// from the environment.
package config
