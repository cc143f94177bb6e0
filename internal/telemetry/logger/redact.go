package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// bearerPrefix is the scheme prefix of an Authorization header value.
const bearerPrefix = "Bearer "

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// Value shape wins over key name: a bearer header or JWT is masked
		// even under an innocuous key.
		if masked, ok := maskCredential(strVal); ok {
			return slog.String(a.Key, masked)
		}

		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskCredential masks bearer header values and JWT-shaped strings.
func maskCredential(value string) (string, bool) {
	if strings.HasPrefix(value, bearerPrefix) {
		return bearerPrefix + maskValue(strings.TrimPrefix(value, bearerPrefix)), true
	}
	if looksLikeJWT(value) {
		return maskValue(value), true
	}
	return value, false
}

// looksLikeJWT reports whether value has the three-segment shape of a JWS
// with a JSON header ("eyJ" is base64url of `{"`).
func looksLikeJWT(value string) bool {
	return strings.HasPrefix(value, "eyJ") && strings.Count(value, ".") == 2
}

// maskValue keeps the first and last 3 characters.
// Format: abc...xyz
func maskValue(value string) string {
	if len(value) <= 12 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// RedactString manually redacts a string value.
func RedactString(value string) string {
	masked, _ := maskCredential(value)
	return masked
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

// IsSensitiveValue checks if a value appears to be a credential.
func IsSensitiveValue(value string) bool {
	_, ok := maskCredential(value)
	return ok
}
