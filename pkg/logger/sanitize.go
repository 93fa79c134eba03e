package logger

import "strings"

// SanitizeQueryString checks if a query string contains sensitive
// parameters and returns true if the whole query should be redacted. PINs
// never belong in query strings, but a buggy client might put them there.
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"pin",
		"adminpin",
		"currentpin",
		"newpin",
		"token",
		"secret",
		"auth",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param+"=") {
			return true
		}
	}
	return false
}

// RedactPIN masks a PIN for log output, keeping only its length.
func RedactPIN(pin string) string {
	if pin == "" {
		return ""
	}
	return strings.Repeat("*", len(pin))
}
