// Package tlsroots loads TLS material for both ends of a connection.
//
//   - roots.go: trust pools for clients, system roots plus an optional CA file
//   - keypair.go: a server key pair that reloads when its files change
package tlsroots
