package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/gojunction/timestep"
)

// nStep implements checkpointing every N steps of an episode
type nStep struct {
	interval int
	saver    Saver

	// filename returns the name of the file to save the next checkpoint
	// in. To enumerate files (e.g. frame1.png, frame2.png, ...,
	// frameK.png) use FilenameEnumerator.
	filename func() string
}

// NewNStep returns a checkpointer that checkpoints on every timestep
// whose number is a multiple of n, including the first timestep of
// each episode
func NewNStep(n int, saver Saver, filename func() string) Checkpointer {
	if n < 1 {
		panic(fmt.Sprintf("newNStep: interval %v should be positive", n))
	}
	return &nStep{
		interval: n,
		saver:    saver,
		filename: filename,
	}
}

// Checkpoint saves the timestep if its number is a multiple of the
// interval
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if t.Number%n.interval == 0 {
		return n.saver.Save(t, n.filename())
	}
	return nil
}
