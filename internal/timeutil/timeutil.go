// Package timeutil converts between HH:MM clock text and minutes since midnight.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadClock indicates malformed clock text.
var ErrBadClock = errors.New("malformed clock time")

// Minutes parses "H:MM"/"HH:MM" text into minutes since midnight.
// Hours must be 0-23 and minutes 0-59.
func Minutes(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q (want HH:MM)", ErrBadClock, text)
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: bad hour field", ErrBadClock, text)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: bad minute field", ErrBadClock, text)
	}

	if h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q: hour out of range", ErrBadClock, text)
	}
	if m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q: minute out of range", ErrBadClock, text)
	}

	return h*60 + m, nil
}

// Text renders minutes since midnight as zero-padded "HH:MM".
func Text(minutes int) (string, error) {
	if minutes < 0 {
		return "", fmt.Errorf("%w: negative minutes %d", ErrBadClock, minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// ParseClock accepts either already-normalized integer minutes ("540") or
// clock text ("9:00") and returns minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q (want minutes or HH:MM)", ErrBadClock, s)
		}
		if n < 0 {
			return 0, fmt.Errorf("%w: negative minutes %d", ErrBadClock, n)
		}
		return n, nil
	}
	return Minutes(s)
}
