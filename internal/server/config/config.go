package config

import (
	"net/netip"
	"strings"
	"time"
)

// ServerConfig is the root configuration for tokgate-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Auth    AuthSection    `koanf:"auth"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// PathPrefix is prepended to the auth routes, e.g. "/api".
	PathPrefix string `koanf:"path_prefix"`

	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// TrustedProxies lists IPs or CIDRs of reverse proxies whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string `koanf:"trusted_proxies"`

	// EnableAudit logs one line per request.
	EnableAudit bool `koanf:"enable_audit"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// TrustedProxyPrefixes parses TrustedProxies. A bare IP becomes a
// single-address prefix.
func (c HTTPConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, s := range c.TrustedProxies {
		s = strings.TrimSpace(s)
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// TLSEnabled reports whether both TLS files are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// AuthSection configures token issuance and credential checks.
type AuthSection struct {
	// Secret is the HS256 signing key.
	Secret string `koanf:"secret"`

	TokenTTL time.Duration `koanf:"token_ttl"`

	// PasswordScheme is "plain" or "bcrypt".
	PasswordScheme string `koanf:"password_scheme"`

	SeedUsers []SeedUser `koanf:"seed_users"`
}

// SeedUser is a user created at start-up.
type SeedUser struct {
	ID       string `koanf:"id"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Email    string `koanf:"email"`
}

// StorageSection configures the in-process stores.
type StorageSection struct {
	// CredentialBackend is "memory" or "badger".
	CredentialBackend string `koanf:"credential_backend"`

	// RegistryShards is the session registry shard count, a power of two.
	RegistryShards int `koanf:"registry_shards"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the /metrics endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}
