package shortlink

import (
	"net/url"
	"strings"
)

// ValidateTargetURL checks that raw is a well-formed absolute http or https URL.
// Returns a *ValidationError describing the first problem found.
func ValidateTargetURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &ValidationError{Reason: "url is empty"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return &ValidationError{Reason: "url must be absolute"}
	default:
		return &ValidationError{Reason: "scheme must be http or https"}
	}

	if u.Host == "" {
		return &ValidationError{Reason: "url has no host"}
	}

	return nil
}
