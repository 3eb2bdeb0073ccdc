package obs

import (
	"net/url"
	"strings"
)

// IsSensitiveLogField reports whether a key likely carries a credential.
func IsSensitiveLogField(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch {
	case normalized == "authorization":
		return true
	case normalized == "code" || normalized == "state":
		return true
	case strings.Contains(normalized, "token"):
		return true
	case strings.Contains(normalized, "secret"):
		return true
	case strings.Contains(normalized, "password"):
		return true
	case strings.Contains(normalized, "apikey"):
		return true
	case strings.Contains(normalized, "cookie"):
		return true
	case strings.Contains(normalized, "session"):
		return true
	default:
		return false
	}
}

// RedactedTarget returns the request target with sensitive query values
// masked. OIDC callbacks carry one-time codes in the query string and
// must not land in access logs verbatim.
func RedactedTarget(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}

	query := u.Query()
	changed := false
	for key, values := range query {
		if !IsSensitiveLogField(key) {
			continue
		}
		for i := range values {
			values[i] = "[REDACTED]"
		}
		query[key] = values
		changed = true
	}
	if !changed {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path + "?" + query.Encode()
}
