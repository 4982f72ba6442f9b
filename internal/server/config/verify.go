package config

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yndnr/tokgate/internal/core/domain"
)

// Verify validates the configuration. All problems are reported together,
// keyed by their dotted config path.
func Verify(cfg *ServerConfig) error {
	errs := validation.Errors{}

	verifyHTTP(errs, &cfg.Server.HTTP)
	verifyAuth(errs, &cfg.Auth)
	verifyStorage(errs, &cfg.Storage)

	errs["log.level"] = validation.Validate(strings.ToLower(cfg.Log.Level),
		validation.In("debug", "info", "warn", "warning", "error"))
	errs["log.format"] = validation.Validate(strings.ToLower(cfg.Log.Format),
		validation.In("json", "text", "console"))

	return errs.Filter()
}

func verifyHTTP(errs validation.Errors, c *HTTPConfig) {
	errs["server.http.addr"] = validation.Validate(c.Addr, validation.Required)
	errs["server.http.rate_limit"] = validation.Validate(c.RateLimit, validation.Min(0.0))
	errs["server.http.rate_burst"] = validation.Validate(c.RateBurst, validation.Min(0))
	errs["server.http.path_prefix"] = validation.Validate(c.PathPrefix, validation.By(pathPrefix))

	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs["server.http.trusted_proxies"] = err
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs["server.http.tls"] = errors.New("tls_cert_file and tls_key_file must be set together")
	}
	if c.ShutdownTimeout < 0 {
		errs["server.http.shutdown_timeout"] = errors.New("must not be negative")
	}
}

func verifyAuth(errs validation.Errors, c *AuthSection) {
	errs["auth.secret"] = validation.Validate(c.Secret, validation.Required)
	errs["auth.password_scheme"] = validation.Validate(c.PasswordScheme, validation.In("plain", "bcrypt", "argon2id"))

	if c.TokenTTL <= 0 {
		errs["auth.token_ttl"] = errors.New("must be positive")
	}

	seen := make(map[string]bool, len(c.SeedUsers))
	for i, u := range c.SeedUsers {
		key := fmt.Sprintf("auth.seed_users[%d]", i)
		if err := domain.ValidateCredentials(u.Username, u.Password); err != nil {
			errs[key] = errors.New("username and password must be 6 to 16 bytes")
			continue
		}
		if seen[u.Username] {
			errs[key] = fmt.Errorf("duplicate username %q", u.Username)
			continue
		}
		seen[u.Username] = true
	}
}

func verifyStorage(errs validation.Errors, c *StorageSection) {
	errs["storage.credential_backend"] = validation.Validate(c.CredentialBackend, validation.In("memory", "badger"))
	errs["storage.registry_shards"] = validation.Validate(c.RegistryShards, validation.By(powerOfTwo))
}

func pathPrefix(value interface{}) error {
	p, _ := value.(string)
	if p == "" {
		return nil
	}
	if !strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return errors.New("must start with / and not end with /")
	}
	return nil
}

func powerOfTwo(value interface{}) error {
	n, _ := value.(int)
	if n <= 0 || n&(n-1) != 0 {
		return errors.New("must be a positive power of two")
	}
	return nil
}
