// Package config provides server configuration for tokgate.
//
// This package defines the server configuration structure and validation:
//
//   - config.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (enums, TLS pairing, seed users)
//   - sanitize.go: Log sanitization (hide secret and seed passwords)
//
// Configuration is loaded via internal/infra/confloader from a YAML file and
// TOKGATE_-prefixed environment variables.
package config
