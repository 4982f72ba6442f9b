// Package httpserver serves the tokgate HTTP API.
//
//   - server.go: listener lifecycle
//   - router.go: middleware chain assembly
//   - middleware.go: recovery, request ids, CORS, per-IP rate limiting,
//     request metrics and audit logging
//
// Endpoint handlers live in the handler subpackage.
package httpserver
