// Package formatting parses and formats human-readable byte sizes.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// aliases maps accepted spellings to an exponent of 1024.
var aliases = map[string]int{
	"": 0, "B": 0,
	"K": 1, "KB": 1, "KIB": 1,
	"M": 2, "MB": 2, "MIB": 2,
	"G": 3, "GB": 3, "GIB": 3,
	"T": 4, "TB": 4, "TIB": 4,
	"P": 5, "PB": 5, "PIB": 5,
	"E": 6, "EB": 6, "EIB": 6,
}

var bytesPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// FormatBytes converts a byte count to a human-readable string using base-1024 units.
func FormatBytes(n int64, precision int) string {
	if n <= 0 {
		return "0 B"
	}
	precision = max(precision, 0)

	exp := 0
	for v := n; v >= 1024 && exp < len(units)-1; v /= 1024 {
		exp++
	}
	size := float64(n) / math.Pow(1024, float64(exp))

	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[exp]
}

// ParseBytes parses a size such as "1MB", "512 KiB" or "4096" into a byte count.
// Units are base-1024 and case-insensitive; a bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	m := bytesPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	exp, ok := aliases[strings.ToUpper(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	return int64(value * math.Pow(1024, float64(exp))), nil
}
