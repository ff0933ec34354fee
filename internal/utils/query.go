package utils

import (
	"strconv"
	"strings"
)

// ParsePositiveInt parses value as a positive integer, returning def when
// it is absent, malformed, zero or negative
func ParsePositiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return def
	}
	return n
}
