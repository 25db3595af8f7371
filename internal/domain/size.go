package domain

import (
	"errors"
	"fmt"
)

// ErrNegativeSize is returned when a byte count below zero is formatted
var ErrNegativeSize = errors.New("size cannot be negative")

const sizeUnit = 1024

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// ReadableSize formats a byte count using the largest unit that keeps the
// magnitude in [1, 1024), e.g. 1536 -> "1.5 KB".
func ReadableSize(n int64) (string, error) {
	if n < 0 {
		return "", ErrNegativeSize
	}
	if n < sizeUnit {
		return fmt.Sprintf("%d B", n), nil
	}

	value := float64(n)
	exp := 0
	// 1023.96 KB would print as "1024.0 KB"
	for value >= sizeUnit-0.05 && exp < len(sizeUnits)-1 {
		value /= sizeUnit
		exp++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[exp]), nil
}

// SizeLabel is ReadableSize for sizes read from the filesystem or the engine.
// Negative input yields "unknown".
func SizeLabel(n int64) string {
	s, err := ReadableSize(n)
	if err != nil {
		return "unknown"
	}
	return s
}
