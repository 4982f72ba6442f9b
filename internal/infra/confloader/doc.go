// Package confloader loads configuration with koanf and watches the
// configuration file for changes with fsnotify.
//
// Priority (highest to lowest):
//
//  1. Overrides (dotted keys, e.g. from command-line flags)
//  2. Environment variables (TOKGATE_ prefix, "__" separates levels)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct
//
// Example: TOKGATE_AUTH__TOKEN_TTL=1h sets auth.token_ttl.
package confloader
