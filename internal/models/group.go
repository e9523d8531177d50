// ABOUTME: Exercise group keys and label ordering helpers.
// ABOUTME: Canonical groups are primary, secondary, cardio and core; others pass through.
package models

import (
	"encoding/json"
	"strings"
)

// Canonical exercise group keys. The store accepts any non-empty key.
const (
	GroupPrimary   = "primary"
	GroupSecondary = "secondary"
	GroupCardio    = "cardio"
	GroupCore      = "core"
)

// AllGroups returns the canonical group keys in display order.
var AllGroups = []string{GroupPrimary, GroupSecondary, GroupCardio, GroupCore}

// IsCanonicalGroup checks if a key is one of the canonical groups.
func IsCanonicalGroup(s string) bool {
	for _, g := range AllGroups {
		if g == s {
			return true
		}
	}
	return false
}

// OrderedGroupKeys returns the canonical groups present in w first, in
// display order, followed by any other keys sorted lexically.
func OrderedGroupKeys(w Workout) []string {
	var keys []string
	for _, g := range AllGroups {
		if _, ok := w.Exercises[g]; ok {
			keys = append(keys, g)
		}
	}
	for _, k := range w.GroupKeys() {
		if !IsCanonicalGroup(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// NaturalLess reports whether label a sorts before b when runs of digits
// are compared by numeric value, so "Week 2" sorts before "Week 10".
func NaturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := a[0], b[0]
		if isDigit(ca) && isDigit(cb) {
			na, restA := splitDigits(a)
			nb, restB := splitDigits(b)
			if c := compareNumeric(na, nb); c != 0 {
				return c < 0
			}
			a, b = restA, restB
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric compares two digit strings without overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// UnmarshalJSON accepts the legacy "day" key for the workout label, which
// the backend emitted before it was renamed to "name".
func (w *Workout) UnmarshalJSON(data []byte) error {
	type plain Workout
	var aux struct {
		plain
		Day string `json:"day"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*w = Workout(aux.plain)
	if w.Name == "" {
		w.Name = aux.Day
	}
	return nil
}
