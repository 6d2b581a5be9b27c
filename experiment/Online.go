package experiment

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/samuelfneumann/gojunction/agent"
	env "github.com/samuelfneumann/gojunction/environment"
	"github.com/samuelfneumann/gojunction/experiment/checkpointer"
	"github.com/samuelfneumann/gojunction/experiment/trackers"
	ts "github.com/samuelfneumann/gojunction/timestep"
	"github.com/samuelfneumann/gojunction/utils/progressbar"
)

// progressWidth is the width of the progress bar in characters
const progressWidth = 40

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env      env.Environment
	agent    agent.Agent
	episodes int
	logger   *log.Logger
	id       uuid.UUID

	currentEpisode int
	trackers       []trackers.Tracker
	checkpointers  []checkpointer.Checkpointer
	progress       *progressbar.ManualProgressBar
}

// NewOnline creates and returns a new online experiment which runs a
// given agent for episodes episodes on an environment. The t
// parameter is a slice of trackers.Tracker which determine what data
// is saved. If logger is nil, the default logger is used.
func NewOnline(e env.Environment, a agent.Agent, episodes int,
	logger *log.Logger, t ...trackers.Tracker) *Online {
	if logger == nil {
		logger = log.Default()
	}

	id := uuid.New()
	return &Online{
		env:      e,
		agent:    a,
		episodes: episodes,
		logger:   logger.With("run", id.String()),
		id:       id,
		trackers: t,
	}
}

// ID returns the unique id of the experiment run
func (o *Online) ID() uuid.UUID {
	return o.id
}

// ShowProgress displays a progress bar over the episodes of the
// experiment on out
func (o *Online) ShowProgress(out io.Writer) {
	o.progress = progressbar.NewManualProgressBar(out, progressWidth,
		o.episodes)
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterCheckpointer registers a Checkpointer which is called on
// every TimeStep of the experiment
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// RunEpisode runs a single episode of the experiment
func (o *Online) RunEpisode() error {
	step, err := o.env.Reset()
	if err != nil {
		return fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.agent.ObserveFirst(step); err != nil {
		return fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.track(step); err != nil {
		return fmt.Errorf("runEpisode: %w", err)
	}

	ret := 0.0
	for !step.Last() {
		action := o.agent.SelectAction(step)
		step, _, err = o.env.Step(action)
		if err != nil {
			return fmt.Errorf("runEpisode: %w", err)
		}
		ret += step.Reward

		if err := o.track(step); err != nil {
			return fmt.Errorf("runEpisode: %w", err)
		}

		if err := o.agent.Observe(action, step); err != nil {
			return fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.agent.Step(); err != nil {
			return fmt.Errorf("runEpisode: %w", err)
		}
	}
	o.agent.EndEpisode()
	o.currentEpisode++

	o.logger.Debug("episode done", "episode", o.currentEpisode,
		"steps", step.Number, "return", ret)
	if o.progress != nil {
		o.progress.Increment()
		o.progress.SetSuffix(fmt.Sprintf("return: %.2f", ret))
		o.progress.Display()
	}
	return nil
}

// Run runs all remaining episodes of the experiment and closes the
// environment
func (o *Online) Run() error {
	o.logger.Info("experiment started", "episodes", o.episodes)

	for o.currentEpisode < o.episodes {
		if err := o.RunEpisode(); err != nil {
			o.env.Close()
			return fmt.Errorf("run: episode %v: %w", o.currentEpisode+1, err)
		}
	}

	if err := o.env.Close(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	o.logger.Info("experiment finished", "episodes", o.currentEpisode)
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, tracker := range o.trackers {
		if err := tracker.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// track sends the current timestep to each Tracker and Checkpointer
func (o *Online) track(t ts.TimeStep) error {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return fmt.Errorf("track: could not checkpoint: %w", err)
		}
	}
	return nil
}
