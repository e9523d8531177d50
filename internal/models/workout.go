// ABOUTME: Schedule, Workout and Exercise models for training plans.
// ABOUTME: A Schedule holds ordered workouts; workouts group exercises by key.
package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// ErrInvalidSchedule is returned when a schedule is missing a required field.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Schedule is one named training week. Name is the natural key shared
// with the remote service.
type Schedule struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Workouts []Workout `json:"workouts" yaml:"workouts"`
}

// Workout is a single session within a schedule. Name is a free-form day
// label and is not guaranteed to sort numerically.
type Workout struct {
	ID        string                `json:"id" yaml:"id"`
	Name      string                `json:"name" yaml:"name"`
	Exercises map[string][]Exercise `json:"exercises" yaml:"exercises"`
}

// Exercise is an immutable prescription within a workout group.
type Exercise struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Sets   int     `json:"sets" yaml:"sets"`
	Reps   *int    `json:"reps,omitempty" yaml:"reps,omitempty"`
	Weight *string `json:"weight,omitempty" yaml:"weight,omitempty"`
	Notes  *string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NewSchedule creates an empty Schedule with a generated ID.
func NewSchedule(name string) *Schedule {
	return &Schedule{
		ID:       uuid.NewString(),
		Name:     name,
		Workouts: []Workout{},
	}
}

// AddWorkout appends a workout and returns the schedule.
func (s *Schedule) AddWorkout(w Workout) *Schedule {
	s.Workouts = append(s.Workouts, w)
	return s
}

// NewWorkout creates a Workout with no exercise groups.
func NewWorkout(name string) Workout {
	return Workout{
		ID:        uuid.NewString(),
		Name:      name,
		Exercises: map[string][]Exercise{},
	}
}

// AddExercise appends an exercise to the given group, creating the group
// if needed.
func (w Workout) AddExercise(group string, e Exercise) Workout {
	if w.Exercises == nil {
		w.Exercises = map[string][]Exercise{}
	}
	w.Exercises[group] = append(w.Exercises[group], e)
	return w
}

// GroupKeys returns the workout's group keys in sorted order.
func (w Workout) GroupKeys() []string {
	keys := make([]string, 0, len(w.Exercises))
	for k := range w.Exercises {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewExercise creates an Exercise with a generated ID.
func NewExercise(name string, sets int) Exercise {
	return Exercise{
		ID:   uuid.NewString(),
		Name: name,
		Sets: sets,
	}
}

// WithReps sets the rep count.
func (e Exercise) WithReps(reps int) Exercise {
	e.Reps = &reps
	return e
}

// WithWeight sets the load description.
func (e Exercise) WithWeight(weight string) Exercise {
	e.Weight = &weight
	return e
}

// WithNotes sets notes on the exercise.
func (e Exercise) WithNotes(notes string) Exercise {
	e.Notes = &notes
	return e
}

// Validate checks the fields the store requires.
func (s *Schedule) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: schedule name is missing", ErrInvalidSchedule)
	}
	for i, w := range s.Workouts {
		if w.Name == "" {
			return fmt.Errorf("%w: workout %d name is missing", ErrInvalidSchedule, i)
		}
		for group, exercises := range w.Exercises {
			if group == "" {
				return fmt.Errorf("%w: workout %q has an empty group key", ErrInvalidSchedule, w.Name)
			}
			for _, e := range exercises {
				if e.Name == "" {
					return fmt.Errorf("%w: exercise in %q/%s name is missing", ErrInvalidSchedule, w.Name, group)
				}
				if e.Sets < 0 {
					return fmt.Errorf("%w: exercise %q has negative sets", ErrInvalidSchedule, e.Name)
				}
			}
		}
	}
	return nil
}

// EnsureIDs assigns random IDs to any schedule, workout or exercise that
// arrived without one.
func (s *Schedule) EnsureIDs() {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	for i := range s.Workouts {
		w := &s.Workouts[i]
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		for _, exercises := range w.Exercises {
			for j := range exercises {
				if exercises[j].ID == "" {
					exercises[j].ID = uuid.NewString()
				}
			}
		}
	}
}

// Normalize replaces nil collections with empty ones so that decoded,
// constructed and stored schedules compare equal.
func (s *Schedule) Normalize() {
	if s.Workouts == nil {
		s.Workouts = []Workout{}
	}
	for i := range s.Workouts {
		w := &s.Workouts[i]
		if w.Exercises == nil {
			w.Exercises = map[string][]Exercise{}
		}
		for k, exercises := range w.Exercises {
			if exercises == nil {
				w.Exercises[k] = []Exercise{}
			}
		}
	}
}

// ExerciseCount returns the number of exercises across all workouts.
func (s *Schedule) ExerciseCount() int {
	n := 0
	for _, w := range s.Workouts {
		for _, exercises := range w.Exercises {
			n += len(exercises)
		}
	}
	return n
}

// Clone returns a deep copy of s that shares no slices, maps or pointers
// with the original.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	out := &Schedule{ID: s.ID, Name: s.Name, Workouts: make([]Workout, len(s.Workouts))}
	for i, w := range s.Workouts {
		cw := Workout{ID: w.ID, Name: w.Name, Exercises: make(map[string][]Exercise, len(w.Exercises))}
		for k, exercises := range w.Exercises {
			copied := make([]Exercise, len(exercises))
			for j, e := range exercises {
				copied[j] = e.clone()
			}
			cw.Exercises[k] = copied
		}
		out.Workouts[i] = cw
	}
	return out
}

func (e Exercise) clone() Exercise {
	if e.Reps != nil {
		v := *e.Reps
		e.Reps = &v
	}
	if e.Weight != nil {
		v := *e.Weight
		e.Weight = &v
	}
	if e.Notes != nil {
		v := *e.Notes
		e.Notes = &v
	}
	return e
}
