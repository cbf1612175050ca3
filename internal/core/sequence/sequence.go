// Package sequence formats and increments human-readable domain codes such
// as RES00000042.
//
// Allocate is a pure function: it derives the next code from the last one the
// caller observed. Two callers that observed the same last code receive the
// same next code; uniqueness is left to the store.
package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"restaurant-menu/internal/core/domain"
)

// Width is the number of digits of a code suffix
const Width = 8

// MaxNumber is the largest number that fits in a code suffix
const MaxNumber = 99_999_999

const (
	PrefixRestaurant = "RES"
	PrefixOrder      = "ORD"
)

// Allocate returns the code following lastCode, or the first code of prefix
// when lastCode is nil
func Allocate(prefix string, lastCode *string) (string, error) {
	next := 1
	if lastCode != nil {
		last, err := Parse(prefix, *lastCode)
		if err != nil {
			return "", err
		}
		next = last + 1
	}
	return Format(prefix, next)
}

// Format builds the code of number n under prefix
func Format(prefix string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("%w: %s%d", domain.ErrMalformedCode, prefix, n)
	}
	if n > MaxNumber {
		return "", fmt.Errorf("%w: %s", domain.ErrCodeSpaceExhausted, prefix)
	}
	return fmt.Sprintf("%s%0*d", prefix, Width, n), nil
}

// Parse extracts the numeric suffix of code
func Parse(prefix, code string) (int, error) {
	suffix, ok := strings.CutPrefix(code, prefix)
	if !ok || suffix == "" {
		return 0, fmt.Errorf("%w: %q does not start with %q", domain.ErrMalformedCode, code, prefix)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q has a non numeric suffix", domain.ErrMalformedCode, code)
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", domain.ErrMalformedCode, code, err)
	}
	return n, nil
}
