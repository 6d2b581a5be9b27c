// Package junction implements a single signalized four-way road
// junction as a discrete control environment on top of the SUMO
// traffic simulator.
//
// On every step the agent chooses one of two traffic light phases:
//
//	Action	Meaning
//	  0		Green for the first pair of approaches
//	  1		Green for the second pair of approaches
//
// Observations are square grids discretizing the vehicle positions
// around the junction, with four centre cells holding the state of
// the traffic light (see ObservationEncoder). Rewards are never
// positive and penalize teleported vehicles, light switches, vehicle
// delay and waiting time (see RewardCalculator). Episodes end once no
// vehicle is left in or still expected to enter the network.
package junction

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	env "github.com/samuelfneumann/gojunction/environment"
	ts "github.com/samuelfneumann/gojunction/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// ErrInvalidAction is returned when stepping with an action outside
// the action space
var ErrInvalidAction = errors.New("invalid action")

// Discrete actions
const (
	MinAction  int = 0
	MaxAction  int = 1
	ActionDims int = 1
)

// Keys of the TimeStep Info values set on every step
const (
	InfoTeleports = "teleports"
	InfoSwitches  = "switches"
	InfoDelay     = "delay"
	InfoWaitTime  = "wait_time"
	InfoVehicles  = "vehicles"
	InfoPhase     = "phase"
)

// episodeState holds the counters of the current episode
type episodeState struct {
	tick     int
	switches int
	phase    int
	ret      float64
}

// Junction implements the environment.Environment and
// environment.Spaces interfaces for a single signalized junction.
//
// Reset returns an all-zero observation rather than the state of the
// first tick: the first real observation is returned by the first call
// to Step.
type Junction struct {
	lifecycle *Lifecycle
	encoder   *ObservationEncoder
	reward    *RewardCalculator
	logger    *log.Logger

	seed         uint64
	reseed       bool
	discount     float64
	initialPhase int
	episode      int

	state    episodeState
	lastStep ts.TimeStep
}

// New returns a new Junction which runs SUMO from the installation in
// SUMO_HOME. No engine is started until Reset is called.
func New(c Config) (*Junction, error) {
	return NewWithLauncher(c, SumoLauncher{}, nil)
}

// NewWithLauncher returns a new Junction whose engines are started by
// launcher. If logger is nil, the default logger is used.
func NewWithLauncher(c Config, launcher Launcher,
	logger *log.Logger) (*Junction, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if launcher == nil {
		return nil, fmt.Errorf("new: no engine launcher")
	}
	if logger == nil {
		logger = log.Default()
	}

	reward, err := NewRewardCalculator(c.Weights)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &Junction{
		lifecycle:    NewLifecycle(c, launcher, logger),
		encoder:      NewObservationEncoder(c.Resolution, c.RoadLength),
		reward:       reward,
		logger:       logger,
		seed:         c.Seed,
		reseed:       c.ReseedEachEpisode,
		discount:     c.Discount,
		initialPhase: c.InitialPhase,
	}, nil
}

// Seed sets the seed of the demand schedules of the following episodes
func (j *Junction) Seed(seed uint64) []uint64 {
	j.seed = seed
	return []uint64{seed}
}

// SetVisualization determines whether the following episodes are run
// in the SUMO GUI
func (j *Junction) SetVisualization(visualize bool) {
	j.lifecycle.SetVisualization(visualize)
}

// Reset closes the running episode, if any, and starts a new one. The
// returned TimeStep holds an all-zero observation.
func (j *Junction) Reset() (ts.TimeStep, error) {
	seed := j.seed
	if j.reseed {
		seed += uint64(j.episode)
	}

	if err := j.lifecycle.Reset(seed); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	j.episode++
	j.state = episodeState{phase: j.initialPhase}

	step := ts.New(ts.First, 0, j.discount, j.encoder.Zero(), 0)
	j.lastStep = step

	return step, nil
}

// Step sets the traffic light phase to action and advances the
// simulation by one tick. It returns the next TimeStep and whether the
// episode has ended. Legal actions are in {0, 1}; other actions return
// ErrInvalidAction without touching the simulation.
func (j *Junction) Step(action int) (ts.TimeStep, bool, error) {
	if action < MinAction || action > MaxAction {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: %v ∉ {0, 1}",
			ErrInvalidAction, action)
	}

	done, switched, err := j.lifecycle.Step(action)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}
	if switched {
		j.state.switches++
	}
	j.state.phase = action
	j.state.tick++

	snap, err := j.lifecycle.Snapshot()
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}
	obs, err := j.encoder.Encode(snap)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	stats := NewStats(snap, j.state.switches)
	reward := j.reward.Reward(stats)
	j.state.ret += reward

	stepType := ts.Mid
	if done {
		stepType = ts.Last
	}
	step := ts.New(stepType, reward, j.discount, obs, j.state.tick)
	step.Info[InfoTeleports] = float64(stats.Teleports)
	step.Info[InfoSwitches] = float64(stats.Switches)
	step.Info[InfoDelay] = stats.Delay
	step.Info[InfoWaitTime] = stats.WaitTime
	step.Info[InfoVehicles] = float64(len(snap.Vehicles))
	step.Info[InfoPhase] = float64(action)
	j.lastStep = step

	if done {
		j.logger.Info("episode finished", "episode", j.episode,
			"ticks", j.state.tick, "return", j.state.ret,
			"switches", j.state.switches)
	}

	return step, done, nil
}

// Close ends the running episode and releases the simulation engine
func (j *Junction) Close() error {
	return j.lifecycle.Close()
}

// LastTimeStep returns the most recent TimeStep
func (j *Junction) LastTimeStep() ts.TimeStep {
	return j.lastStep
}

// Switches returns the number of light switches in the current episode
func (j *Junction) Switches() int {
	return j.state.switches
}

// Phase returns the phase most recently applied to the traffic light
func (j *Junction) Phase() int {
	return j.state.phase
}

// ActionSpec returns the action specification of the environment
func (j *Junction) ActionSpec() env.Spec {
	bounds := r1.Interval{Min: float64(MinAction), Max: float64(MaxAction)}
	return env.NewBoxSpec([]int{ActionDims}, env.Action, bounds,
		env.Discrete)
}

// ObservationSpec returns the observation specification of the
// environment
func (j *Junction) ObservationSpec() env.Spec {
	res := j.encoder.Resolution()
	return env.NewBoxSpec([]int{res, res}, env.Observation,
		r1.Interval{Min: 0, Max: 1}, env.Continuous)
}

func (j *Junction) String() string {
	msg := "Junction  |  Episode: %v  |  Tick: %v  |  Phase: %v  |  " +
		"Switches: %v"

	return fmt.Sprintf(msg, j.episode, j.state.tick, j.state.phase,
		j.state.switches)
}
