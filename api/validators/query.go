package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ParseQueryInt reads an integer query parameter, falling back to defaultVal when absent.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").
			WithDetails([]string{fmt.Sprintf("%s must be an integer", key)})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").
			WithDetails([]string{fmt.Sprintf("%s must be between %d and %d", key, min, max)})
	}
	return value, nil
}

// ParseQueryDecimal reads an optional non-negative decimal query parameter.
func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").
			WithDetails([]string{fmt.Sprintf("%s must be a non-negative number", key)})
	}
	return &value, nil
}

// ParseQueryEnum reads an optional parameter through parse. A missing
// parameter yields the zero value; a rejected one lists the allowed values.
func ParseQueryEnum[T any](r *http.Request, key string, parse func(string) (T, error), allowed []string) (T, error) {
	var zero T
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return zero, nil
	}
	value, err := parse(raw)
	if err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Validation failed").
			WithDetails([]string{fmt.Sprintf("%s must be one of: %s", key, strings.Join(allowed, ", "))})
	}
	return value, nil
}

// ParseQueryList splits a comma separated parameter, dropping blanks.
func ParseQueryList(r *http.Request, key string, maxLen int) []string {
	raw := r.URL.Query().Get(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := SanitizeString(part, maxLen); v != "" {
			out = append(out, v)
		}
	}
	return out
}
