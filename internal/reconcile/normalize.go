// Package reconcile fills missing Bulletin ids on the local dataset from
// crawled name/id pairs.
package reconcile

import "strings"

// CompareKey normalizes a meteorite name for matching: trimmed and
// lowercased. This is the lookup key only; it is never written back to
// the dataset.
func CompareKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CleanName strips the Bulletin's provisional-name marker (asterisks)
// from a display name and trims it. Unlike CompareKey this is a data
// quality correction applied to the persisted name itself, once, before
// any matching happens: datasets exported with the marker never match
// the marker-free names on the Bulletin pages.
func CleanName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "*", ""))
}
