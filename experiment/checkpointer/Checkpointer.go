// Package checkpointer implements Checkpointers, which save the state
// of an experiment to disk as it runs
package checkpointer

import (
	ts "github.com/samuelfneumann/gojunction/timestep"
)

// Checkpointer checkpoints the experiment based on timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}

// Saver saves data derived from a TimeStep to a file
type Saver interface {
	Save(t ts.TimeStep, filename string) error
}

// SaverFunc is a function which implements Saver
type SaverFunc func(t ts.TimeStep, filename string) error

// Save calls f(t, filename)
func (f SaverFunc) Save(t ts.TimeStep, filename string) error {
	return f(t, filename)
}
