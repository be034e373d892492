package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAmount normalizes a string monetary amount and parses it as a decimal.
// Thousands separators (commas) are stripped before parsing, so "1,000.50"
// yields 1000.50. Non-numeric, non-finite or non-positive values are rejected.
func ParseAmount(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if normalized == "" {
		return 0, fmt.Errorf("amount is required")
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a valid number", raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("amount %q is not a finite number", raw)
	}
	if value <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero")
	}

	return value, nil
}
