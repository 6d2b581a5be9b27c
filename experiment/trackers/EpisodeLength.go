package trackers

import (
	"fmt"

	ts "github.com/samuelfneumann/gojunction/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment.
// Note that an episode must finish for this Tracker to save its data.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if the timestep is the last timestep
// in the episode
func (e *EpisodeLength) Track(t ts.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
	}
}

// Data returns the lengths of all finished episodes
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	if err := save(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
