// Command tokgate-server runs the tokgate HTTP authentication service.
//
//	tokgate-server --config /etc/tokgate/config.yaml
//
// Every setting can also come from TOKGATE_ environment variables, with "__"
// separating nesting levels, e.g. TOKGATE_AUTH__TOKEN_TTL=1h.
package main
