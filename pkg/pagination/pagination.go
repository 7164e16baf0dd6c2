// Package pagination bounds the size of "most recent N" queries.
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidCount indicates a count parameter that is not a non-negative integer.
var ErrInvalidCount = errors.New("invalid count")

// Clamp bounds a requested count: non-positive values select the default,
// values above the maximum are capped.
func (c Config) Clamp(count int) int {
	if count <= 0 {
		return c.DefaultCount
	}
	return min(count, c.MaxCount)
}

// CountFromQuery reads the count parameter from URL query values.
// A missing parameter selects the default; zero returns zero so callers can
// ask for an empty window explicitly.
func CountFromQuery(values url.Values, cfg Config) (int, error) {
	raw := strings.TrimSpace(values.Get("count"))
	if raw == "" {
		return cfg.DefaultCount, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, raw)
	}
	if n == 0 {
		return 0, nil
	}
	return cfg.Clamp(n), nil
}
