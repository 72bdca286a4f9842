// Package screening holds the name normalizer and the two-phase matching
// engine. It knows nothing about storage; callers hand it a Population.
package screening

import "strings"

// Normalize derives the canonical full name from name parts: absent parts are
// skipped, whitespace runs collapse to one space, edges are trimmed and the
// result is uppercased.
func Normalize(given, firstSurname, secondSurname string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{given, firstSurname, secondSurname} {
		parts = append(parts, strings.Fields(p)...)
	}
	return strings.ToUpper(strings.Join(parts, " "))
}
