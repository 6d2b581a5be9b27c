// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	ts "github.com/samuelfneumann/gojunction/timestep"
)

// Environment implements a simulated environment with discrete actions.
//
// Reset must be called before the first call to Step. Close releases
// any external resources (such as a simulator process) held by the
// Environment.
type Environment interface {
	// Reset resets the environment between episodes
	Reset() (ts.TimeStep, error)

	// Step takes one step, returning whether the episode has ended
	Step(action int) (ts.TimeStep, bool, error)

	Seed(seed uint64) []uint64
	Close() error
}

// Spaces describes the actions and observations of an environment
type Spaces interface {
	ActionSpec() Spec
	ObservationSpec() Spec
}
