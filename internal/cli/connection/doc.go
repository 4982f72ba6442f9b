// Package connection is the HTTP client used by tokgate-cli.
//
// The session token travels as the "token" cookie; a token cookie set by
// the server is surfaced on Response.Token.
package connection
