package logger

import (
	"log/slog"
	"strings"
)

// jwtPrefix is the base64url encoding of `{"` that starts every JWS header.
const jwtPrefix = "eyJ"

var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"auth",
	"bearer",
	"cookie",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks JWT-shaped string values and fully redacts
// non-empty strings under sensitive keys. Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if IsSensitiveValue(strVal) {
			return slog.String(a.Key, maskToken(strVal))
		}
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskToken keeps the JWS prefix and the last few signature characters,
// enough to correlate log lines without leaking a usable token.
func maskToken(value string) string {
	if len(value) <= len(jwtPrefix)+6 {
		return jwtPrefix + "***"
	}
	return jwtPrefix + "***..." + value[len(value)-4:]
}

// RedactString masks value if it looks like a session token.
func RedactString(value string) string {
	if IsSensitiveValue(value) {
		return maskToken(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value has the shape of a compact JWS.
func IsSensitiveValue(value string) bool {
	return strings.HasPrefix(value, jwtPrefix) && strings.Count(value, ".") == 2
}
