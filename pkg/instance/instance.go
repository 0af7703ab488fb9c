package instance

import (
	"os"
	"strings"
)

const (
	envInstanceID = "STOREFRONT_INSTANCE_ID"
	fallbackID    = "local"
)

// ID identifies this process in logs and lock ownership. It prefers
// STOREFRONT_INSTANCE_ID, then the hostname.
func ID() string {
	if id := strings.TrimSpace(os.Getenv(envInstanceID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
