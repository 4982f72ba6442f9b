package config

import "strings"

// Sanitize returns a copy of the config with the signing secret and seed
// passwords masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Auth.Secret != "" {
		sanitized.Auth.Secret = maskSecret(sanitized.Auth.Secret)
	}

	if len(cfg.Auth.SeedUsers) > 0 {
		seeds := make([]SeedUser, len(cfg.Auth.SeedUsers))
		copy(seeds, cfg.Auth.SeedUsers)
		for i := range seeds {
			seeds[i].Password = "****"
		}
		sanitized.Auth.SeedUsers = seeds
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
