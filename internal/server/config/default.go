package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultRateLimit       = 100
	DefaultRateBurst       = 200
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSecret         = "generate_token"
	DefaultTokenTTL       = 7 * 24 * time.Hour
	DefaultPasswordScheme = "plain"

	DefaultCredentialBackend = "memory"
	DefaultRegistryShards    = 16

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultSeedUsers are the accounts present on a fresh start.
func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{ID: "1", Username: "admin666", Password: "admin666"},
		{ID: "2", Username: "michael", Password: "michael"},
	}
}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				RateLimit:       DefaultRateLimit,
				RateBurst:       DefaultRateBurst,
				EnableAudit:     true,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Auth: AuthSection{
			Secret:         DefaultSecret,
			TokenTTL:       DefaultTokenTTL,
			PasswordScheme: DefaultPasswordScheme,
			SeedUsers:      DefaultSeedUsers(),
		},
		Storage: StorageSection{
			CredentialBackend: DefaultCredentialBackend,
			RegistryShards:    DefaultRegistryShards,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}
}
