// Package config provides the configuration of a link check: command-line
// options with their defaults and validation, and the optional .linkcheck
// YAML file with per-host headers and ignore patterns.
package config
