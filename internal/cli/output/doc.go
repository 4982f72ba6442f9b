// Package output renders server replies for tokgate-cli as raw text,
// indented JSON or YAML.
package output
