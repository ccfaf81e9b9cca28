// Package util contains misc internal utilities.
package util

import (
	"strings"
	"time"
	"unicode"
)

// SecsToDuration converts a floating point number of seconds to a time.Duration.
// Rounds to the nearest nanosecond.
func SecsToDuration(secs float64) time.Duration {
	ns := secs * 1e9
	if ns < 0 {
		return time.Duration(ns - 0.5)
	}
	return time.Duration(ns + 0.5)
}

// AllElementsNumbers returns true if every rune in s is a digit or a decimal point.
// It is used to decide if a unit needs to be appended before time.ParseDuration.
func AllElementsNumbers(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return true
}

// SubMuxSanitize converts a URL stem like "structure", "/structure/" or
// "structure/*" into "/structure", the form chi expects for Mount.
// An empty stem or "/" becomes "/".
func SubMuxSanitize(stem string) string {
	stem = strings.TrimSuffix(stem, "*")
	stem = strings.Trim(stem, "/")
	return "/" + stem
}
