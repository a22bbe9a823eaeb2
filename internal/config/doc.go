// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Values from a .env file are visible to the expansion when the caller loads it first.
package config
