package env

import (
	"os"
	"strings"
)

// Prefix namespaces every variable the binaries read.
const Prefix = "FARMCART_"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Lookup prefers the FARMCART_-prefixed variable and falls back to the bare
// name, so LOG_FORMAT and FARMCART_LOG_FORMAT both work.
func Lookup(name, fallback string) string {
	bare := strings.TrimPrefix(name, Prefix)
	if val := os.Getenv(Prefix + bare); val != "" {
		return val
	}
	return Get(bare, fallback)
}
