package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for holder first and last names.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// foldName is the case-insensitive form of a holder name used for identity and ordering.
func foldName(s string) string {
	return strings.ToLower(NormalizeHumanName(s))
}
