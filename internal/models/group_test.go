// ABOUTME: Tests for group keys, natural label ordering and JSON decoding.
// ABOUTME: Covers canonical group detection and the legacy "day" workout key.
package models

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestIsCanonicalGroup(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{GroupPrimary, true},
		{GroupSecondary, true},
		{GroupCardio, true},
		{GroupCore, true},
		{"mobility", false},
		{"Primary", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsCanonicalGroup(tt.key); got != tt.want {
				t.Errorf("IsCanonicalGroup(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestOrderedGroupKeys(t *testing.T) {
	w := NewWorkout("1").
		AddExercise("zeta", NewExercise("Stretch", 1)).
		AddExercise(GroupCore, NewExercise("Plank", 3)).
		AddExercise(GroupPrimary, NewExercise("Squat", 5)).
		AddExercise("mobility", NewExercise("Hips", 2))

	got := OrderedGroupKeys(w)
	want := []string{GroupPrimary, GroupCore, "mobility", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("OrderedGroupKeys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OrderedGroupKeys[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNaturalLess(t *testing.T) {
	labels := []string{"10", "2", "1", "Week 10", "Week 2", "Week 1", "Day B", "Day A"}
	sort.SliceStable(labels, func(i, j int) bool { return NaturalLess(labels[i], labels[j]) })

	want := []string{"1", "2", "10", "Day A", "Day B", "Week 1", "Week 2", "Week 10"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("position %d = %q, want %q (got %v)", i, labels[i], want[i], labels)
		}
	}
}

func TestNaturalLessLeadingZeros(t *testing.T) {
	if NaturalLess("007", "7") || NaturalLess("7", "007") {
		t.Error("expected 007 and 7 to compare equal")
	}
	if !NaturalLess("9", "0010") {
		t.Error("expected 9 < 0010")
	}
}

func TestWorkoutUnmarshalLegacyDay(t *testing.T) {
	var w Workout
	if err := json.Unmarshal([]byte(`{"id":"w1","day":"Monday","exercises":{}}`), &w); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if w.Name != "Monday" {
		t.Errorf("Name = %q, want Monday", w.Name)
	}

	var named Workout
	if err := json.Unmarshal([]byte(`{"id":"w2","name":"1","day":"ignored"}`), &named); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if named.Name != "1" {
		t.Errorf("Name = %q, want 1", named.Name)
	}
}
