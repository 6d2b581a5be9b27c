// Package experiment implements functionality for running an experiment
package experiment

import (
	"github.com/samuelfneumann/gojunction/experiment/checkpointer"
	"github.com/samuelfneumann/gojunction/experiment/trackers"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function will then take
// all cached data and save it to disk. This is usually performed after
// an experiment has been run. The Run() method will run all episodes
// of the experiment, while the RunEpisode() function will run a single
// episode.
//
// Experiments send each TimeStep to Trackers using the Tracker's
// Track() method. The Tracker then determines which data from the
// TimeStep it caches and saves. New Trackers can be registered with an
// Experiment through the constructor or through an Experiment's
// Register() function.
type Experiment interface {
	Run() error
	RunEpisode() error

	// Save all tracked data to disk
	Save() error

	// Adds a new Tracker to the (possibly already running) experiment.
	// Useful if you want to track data only after a specified event.
	Register(t trackers.Tracker)

	// Adds a new Checkpointer to the experiment
	RegisterCheckpointer(c checkpointer.Checkpointer)
}
