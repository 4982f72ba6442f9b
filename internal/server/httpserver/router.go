package httpserver

import (
	"net/http"
	"net/netip"

	"github.com/yndnr/tokgate/internal/server/httpserver/handler"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves every route.
	Handler http.Handler

	// Logger for recovery and audit logging.
	Logger logger.Logger

	// Observer receives per-request metrics. Nil disables them.
	Observer RequestObserver

	// TrustedProxies lists the peers whose forwarding headers are believed.
	// Empty means the TCP peer is always the client.
	TrustedProxies []netip.Prefix

	// CORSAllowedOrigins lists allowed CORS origins. Empty disables CORS.
	CORSAllowedOrigins []string

	// RateLimit is requests per second per client IP. Zero disables it.
	RateLimit float64

	// RateBurst is the bucket size of the per-IP limiter.
	RateBurst int

	// EnableAudit logs one line per request.
	EnableAudit bool
}

// NewRouter wraps cfg.Handler in the middleware chain:
// Recover -> RequestID -> ClientIP -> CORS -> RateLimit -> Observe -> Audit -> Handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(log),
		ClientIP(cfg.TrustedProxies),
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		middlewares = append(middlewares, CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	if cfg.Observer != nil {
		middlewares = append(middlewares, Observe(cfg.Observer))
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}

	return Chain(cfg.Handler, middlewares...)
}

// DefaultRouterConfig returns the router defaults around h.
func DefaultRouterConfig(h *handler.Handler) *RouterConfig {
	return &RouterConfig{
		Handler:     h,
		Logger:      logger.Default(),
		RateLimit:   100,
		RateBurst:   200,
		EnableAudit: true,
	}
}
