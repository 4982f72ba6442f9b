package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/core/service"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

// ReadyFunc reports whether the service can take traffic.
type ReadyFunc func(ctx context.Context) error

// Handler routes requests to the auth, echo and operational endpoints.
type Handler struct {
	authSvc *service.AuthService
	prefix  string
	metrics http.Handler
	ready   ReadyFunc
	mux     *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithPathPrefix mounts the auth and echo routes under prefix, e.g. "/api".
func WithPathPrefix(prefix string) Option {
	return func(h *Handler) {
		h.prefix = strings.TrimSuffix(prefix, "/")
	}
}

// WithMetricsHandler serves GET /metrics with mh.
func WithMetricsHandler(mh http.Handler) Option {
	return func(h *Handler) {
		h.metrics = mh
	}
}

// WithReadyCheck sets the check behind GET /ready.
func WithReadyCheck(fn ReadyFunc) Option {
	return func(h *Handler) {
		h.ready = fn
	}
}

// New creates a Handler. Handlers log through the request context logger
// installed by httpserver.RequestID.
func New(authSvc *service.AuthService, opts ...Option) *Handler {
	h := &Handler{
		authSvc: authSvc,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}

	// sign_in and sign_up take every method; the service rejects non-POST.
	h.handle("", "/auth/sign_in", h.handleSignIn)
	h.handle("", "/auth/sign_up", h.handleSignUp)
	h.handle(http.MethodPost, "/auth/refresh_token", h.handleRefreshToken)
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		h.handle(m, "/auth/check_login", h.handleCheckLogin)
	}

	h.handle(http.MethodGet, "/json", h.handleJSONGet)
	h.handle(http.MethodPost, "/json", h.handleJSONPost)
	h.handle(http.MethodPut, "/json", h.handleJSONUnsupported)
	h.handle(http.MethodDelete, "/json", h.handleJSONUnsupported)
	h.handle(http.MethodPost, "/form/form-data", h.handleFormData)
	h.handle(http.MethodPost, "/form/form-urlencoded", h.handleFormURLEncoded)
	h.handle(http.MethodPost, "/form/json", h.handleFormJSON)
}

// handle registers fn for path under the prefix. An empty method matches all.
func (h *Handler) handle(method, path string, fn http.HandlerFunc) {
	pattern := h.prefix + path
	if method != "" {
		pattern = method + " " + pattern
	}
	h.mux.HandleFunc(pattern, fn)
}

// writeJSON writes data as a JSON body.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

// writeText writes msg as a plain-text body.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// writeError renders err as a plain-text body with the status its code maps to.
// Non-domain errors render as a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.GetErrorCode(err)
	status := errorCodeToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.L(r.Context()).Error("request failed", "error", err)
	}
	w.Header().Set("X-Error-Code", code)
	writeText(w, status, domain.GetErrorMessage(err))
}

// writeStatus renders err as its status with an empty body.
func writeStatus(w http.ResponseWriter, err error) {
	code := domain.GetErrorCode(err)
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(errorCodeToHTTPStatus(code))
}

// writeUnauthorized writes a 401 with no body and no error code. Token
// failures all look alike on the wire; the cause is only logged.
func writeUnauthorized(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"), strings.HasSuffix(code, "-4012"):
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "TG-ARG-"), strings.HasPrefix(code, "TG-USER-4"), strings.HasPrefix(code, "TG-TOKN-400"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
