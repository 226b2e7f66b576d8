package validators

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// ParsePathID reads a positive integer route parameter.
func ParsePathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter out of range").WithDetails(map[string]any{"field": key, "min": 1})
	}
	return value, nil
}

// PathString reads a non-blank route parameter, returned as sent since it
// may be an identity key. chi matches against the escaped path only when the
// URL carries one, so only then is the value unescaped.
func PathString(r *http.Request, key string) (string, error) {
	raw := chi.URLParam(r, key)
	if r.URL != nil && r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(raw)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "path parameter is malformed").WithDetails(map[string]any{"field": key})
		}
		raw = unescaped
	}
	if strings.TrimSpace(raw) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
