package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/core/service"
	"github.com/yndnr/tokgate/internal/infra/buildinfo"
	"github.com/yndnr/tokgate/internal/infra/confloader"
	"github.com/yndnr/tokgate/internal/infra/shutdown"
	"github.com/yndnr/tokgate/internal/infra/tlsroots"
	"github.com/yndnr/tokgate/internal/server/config"
	"github.com/yndnr/tokgate/internal/server/httpserver"
	"github.com/yndnr/tokgate/internal/server/httpserver/handler"
	"github.com/yndnr/tokgate/internal/storage"
	"github.com/yndnr/tokgate/internal/storage/memory"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
	"github.com/yndnr/tokgate/internal/telemetry/metric"
	"github.com/yndnr/tokgate/pkg/token"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "tokgate-server",
		Usage:   "session-token authentication service",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"TOKGATE_CONFIG"},
			},
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides server.http.addr"},
			&cli.StringFlag{Name: "path-prefix", Usage: "route prefix, overrides server.http.path_prefix"},
			&cli.StringFlag{Name: "log-level", Usage: "overrides log.level"},
			&cli.StringFlag{Name: "log-format", Usage: "overrides log.format"},
			&cli.StringFlag{Name: "credential-backend", Usage: "memory or badger, overrides storage.credential_backend"},
		},
		Action: run,
	}
}

// flagKeys maps override flags to configuration keys.
var flagKeys = map[string]string{
	"addr":               "server.http.addr",
	"path-prefix":        "server.http.path_prefix",
	"log-level":          "log.level",
	"log-format":         "log.format",
	"credential-backend": "storage.credential_backend",
}

// flagOverrides collects the override flags set on the command line.
func flagOverrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for name, key := range flagKeys {
		if c.IsSet(name) {
			out[key] = c.String(name)
		}
	}
	return out
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	overrides := flagOverrides(c)

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	bi := buildinfo.Get()
	log.Info("starting tokgate-server",
		"version", bi.Version,
		"commit", bi.Commit,
		"config", configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var keyPair *tlsroots.KeyPair
	if cfg.Server.HTTP.TLSEnabled() {
		keyPair, err = tlsroots.LoadKeyPair(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log.With("component", "tls")))
		if err != nil {
			return err
		}
	}

	st, err := newStack(ctx, cfg, log)
	if err != nil {
		return err
	}

	sh := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, shutdown.WithLogger(log))
	sh.OnShutdown("credential-store", func(context.Context) error {
		return st.users.Close()
	})

	if configFile != "" {
		w, err := watchConfig(configFile, overrides, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			sh.OnShutdown("config-watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	if keyPair != nil {
		if err := keyPair.Watch(); err != nil {
			log.Warn("certificate reload disabled", "error", err)
		}
		sh.OnShutdown("certificate-watcher", func(context.Context) error {
			return keyPair.Stop()
		})
	}

	sh.OnShutdown("http", st.server.Shutdown)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", cfg.Server.HTTP.TLSEnabled(),
			"path_prefix", cfg.Server.HTTP.PathPrefix)

		var err error
		if keyPair != nil {
			err = st.server.ListenAndServeTLS(keyPair.ServerConfig())
		} else {
			err = st.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			stop()
		}
	}()

	shutdownErr := sh.WaitContext(ctx)

	select {
	case err := <-serveErr:
		return errors.Join(fmt.Errorf("serve: %w", err), shutdownErr)
	default:
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers configFile, TOKGATE_ environment variables and flag
// overrides over the defaults and verifies the result.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// stack holds the wired components of a running server.
type stack struct {
	users    storage.UserStore
	sessions *memory.SessionRegistry
	metrics  *metric.Registry
	handler  http.Handler
	server   *httpserver.Server
}

// newStack builds the stores, the auth service and the HTTP stack from cfg.
func newStack(ctx context.Context, cfg *config.ServerConfig, log logger.Logger) (*stack, error) {
	verifier, err := service.NewPasswordVerifier(cfg.Auth.PasswordScheme)
	if err != nil {
		return nil, err
	}
	proxies, err := cfg.Server.HTTP.TrustedProxyPrefixes()
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	users, err := storage.Open(cfg.Storage.CredentialBackend, log.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	if err := seedUsers(ctx, users, verifier, cfg.Auth.SeedUsers); err != nil {
		_ = users.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}

	a := &stack{
		users:    users,
		sessions: memory.NewSessionRegistry(cfg.Storage.RegistryShards),
	}

	codec := token.NewCodec([]byte(cfg.Auth.Secret), token.WithTTL(cfg.Auth.TokenTTL))

	svcOpts := []service.AuthOption{
		service.WithPasswordVerifier(verifier),
		service.WithLogger(log.With("component", "auth")),
	}
	handlerOpts := []handler.Option{
		handler.WithPathPrefix(cfg.Server.HTTP.PathPrefix),
		handler.WithReadyCheck(func(ctx context.Context) error {
			_, err := users.Count(ctx)
			return err
		}),
	}

	if cfg.Metrics.Enabled {
		a.metrics = metric.NewRegistry()
		if err := a.metrics.Register(metric.NewCollector(stateSource{users: users, sessions: a.sessions})); err != nil {
			_ = users.Close()
			return nil, fmt.Errorf("register collector: %w", err)
		}
		svcOpts = append(svcOpts, service.WithRecorder(a.metrics))
		handlerOpts = append(handlerOpts, handler.WithMetricsHandler(a.metrics.Handler()))
	}

	authSvc := service.NewAuthService(users, a.sessions, codec, svcOpts...)
	h := handler.New(authSvc, handlerOpts...)

	routerCfg := httpserver.DefaultRouterConfig(h)
	routerCfg.Logger = log.With("component", "http")
	routerCfg.CORSAllowedOrigins = cfg.Server.HTTP.CORSAllowedOrigins
	routerCfg.TrustedProxies = proxies
	routerCfg.RateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.RateBurst = cfg.Server.HTTP.RateBurst
	routerCfg.EnableAudit = cfg.Server.HTTP.EnableAudit
	if a.metrics != nil {
		routerCfg.Observer = a.metrics
	}

	a.handler = httpserver.NewRouter(routerCfg)
	a.server = httpserver.New(cfg.Server.HTTP.Addr, a.handler)
	return a, nil
}

// seedUsers stores the configured users, passwords passed through verifier.
func seedUsers(ctx context.Context, users storage.UserStore, verifier service.PasswordVerifier, seeds []config.SeedUser) error {
	records := make([]domain.User, 0, len(seeds))
	for _, s := range seeds {
		stored, err := verifier.Hash(s.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", s.Username, err)
		}
		records = append(records, domain.User{
			ID:       s.ID,
			Username: s.Username,
			Password: stored,
			Email:    s.Email,
		})
	}
	return users.Seed(ctx, records...)
}

// watchConfig applies log.level changes in configFile without a restart.
// Flag overrides keep precedence across reloads.
func watchConfig(configFile string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.With("component", "config")))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(configFile); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		applyLogLevel(path, overrides, log)
	})
	w.StartAsync()
	return w, nil
}

// applyLogLevel reloads path and switches the global log level if it changed.
// An invalid file leaves the running configuration untouched.
func applyLogLevel(path string, overrides map[string]any, log logger.Logger) {
	cfg, err := loadConfig(path, overrides)
	if err != nil {
		log.Warn("config reload rejected", "path", path, "error", err)
		return
	}

	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	old := logger.GetLevel()
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("log level not applied", "level", cfg.Log.Level, "error", err)
		return
	}
	log.Info("log level changed", "from", old, "to", logger.GetLevel())
}

// stateSource feeds store sizes to the metrics collector.
type stateSource struct {
	users    storage.UserStore
	sessions *memory.SessionRegistry
}

func (s stateSource) UserCount() (int, error) {
	return s.users.Count(context.Background())
}

func (s stateSource) SessionCount() int {
	return s.sessions.Count(context.Background())
}

func (s stateSource) SessionShards() []int {
	stats := s.sessions.ShardStats()
	out := make([]int, len(stats))
	for _, st := range stats {
		out[st.Index] = st.Count
	}
	return out
}
