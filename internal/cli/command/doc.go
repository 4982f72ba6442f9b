// Package command defines the tokgate-cli commands on urfave/cli/v2.
//
//   - root.go: application, global flags, response printing
//   - auth.go: sign-in, sign-up, refresh, check-login, health
//
// Auth routes honour --path-prefix; /health and /ready never carry it.
package command
