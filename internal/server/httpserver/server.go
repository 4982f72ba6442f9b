package httpserver

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// Server is the HTTP/HTTPS listener in front of the router.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		handler: handler,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// ListenAndServeTLS starts the HTTPS server. Certificates come from
// tlsCfg, typically a GetCertificate hook that follows rotation.
func (s *Server) ListenAndServeTLS(tlsCfg *tls.Config) error {
	s.httpServer.TLSConfig = tlsCfg
	return s.httpServer.ListenAndServeTLS("", "")
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	return s.httpServer.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
