package junction

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrNotRunning is returned when the simulation is stepped or queried
// without a running engine
var ErrNotRunning = errors.New("simulation is not running")

// State is the state of a Lifecycle
type State int

const (
	Unstarted State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "Unstarted"
	case Running:
		return "Running"
	case Terminated:
		return "Terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Lifecycle owns the connection to the simulation engine. It writes
// the demand schedule of each episode, starts and closes the engine,
// and applies the chosen traffic light phase on every tick.
//
// At most one engine is live at a time: the engine of the previous
// episode is always closed before the next schedule is written.
type Lifecycle struct {
	launcher  Launcher
	demand    *DemandGenerator
	logger    *log.Logger
	engine    Engine
	state     State
	visualize bool
	episodes  int

	sumoConfig   string
	routeFile    string
	junctionID   string
	initialPhase int
}

// NewLifecycle returns a new, unstarted Lifecycle
func NewLifecycle(c Config, launcher Launcher, logger *log.Logger) *Lifecycle {
	if logger == nil {
		logger = log.Default()
	}

	return &Lifecycle{
		launcher:     launcher,
		demand:       NewDemandGenerator(c.EpisodeTicks, c.Arrival),
		logger:       logger,
		state:        Unstarted,
		visualize:    c.Visualize,
		sumoConfig:   c.SumoConfig,
		routeFile:    c.RouteFile,
		junctionID:   c.JunctionID,
		initialPhase: c.InitialPhase,
	}
}

// State returns the current state of the Lifecycle
func (l *Lifecycle) State() State {
	return l.state
}

// SetVisualization determines whether engines are started with a GUI.
// It takes effect on the next call to Start or Reset.
func (l *Lifecycle) SetVisualization(visualize bool) {
	l.visualize = visualize
}

// Start generates the demand schedule for seed, starts the engine on
// it and sets the initial traffic light phase
func (l *Lifecycle) Start(seed uint64) error {
	if l.state == Running {
		return fmt.Errorf("start: engine is already running")
	}

	schedule := l.demand.Generate(seed)
	if err := schedule.WriteFile(l.routeFile); err != nil {
		return fmt.Errorf("start: could not write demand schedule: %w", err)
	}

	engine, err := l.launcher.Launch(LaunchOptions{
		ConfigFile: l.sumoConfig,
		Visualize:  l.visualize,
	})
	if err != nil {
		return fmt.Errorf("start: could not launch engine: %w", err)
	}

	if err := engine.SetPhase(l.junctionID, l.initialPhase); err != nil {
		engine.Close()
		return fmt.Errorf("start: could not set initial phase: %w", err)
	}

	l.engine = engine
	l.state = Running
	l.episodes++

	l.logger.Info("episode started", "episode", l.episodes, "seed", seed,
		"vehicles", len(schedule.Vehicles), "visualize", l.visualize)
	return nil
}

// Step sets the traffic light phase to action and advances the engine
// by one tick. It returns whether no vehicles remain in or are still
// expected to enter the network, and whether the action switched the
// traffic light away from one of its two steady green states.
func (l *Lifecycle) Step(action int) (done, switched bool, err error) {
	if l.state != Running {
		return false, false, fmt.Errorf("step: %w (state %v)", ErrNotRunning,
			l.state)
	}

	state, err := l.engine.RedYellowGreenState(l.junctionID)
	if err != nil {
		return false, false, fmt.Errorf("step: %w", err)
	}
	switched = Switched(state, action)

	if err := l.engine.SetPhase(l.junctionID, action); err != nil {
		return false, false, fmt.Errorf("step: %w", err)
	}
	if err := l.engine.SimulationStep(); err != nil {
		return false, false, fmt.Errorf("step: %w", err)
	}

	remaining, err := l.engine.MinExpectedNumber()
	if err != nil {
		return false, false, fmt.Errorf("step: %w", err)
	}
	return remaining == 0, switched, nil
}

// Snapshot reads the current light state, teleport count and vehicle
// states from the engine
func (l *Lifecycle) Snapshot() (Snapshot, error) {
	if l.state != Running {
		return Snapshot{}, fmt.Errorf("snapshot: %w (state %v)",
			ErrNotRunning, l.state)
	}

	s, err := snapshot(l.engine, l.junctionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return s, nil
}

// Reset closes the engine of the previous episode, if any, and starts
// a new episode with the given seed
func (l *Lifecycle) Reset(seed uint64) error {
	if err := l.Close(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := l.Start(seed); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Close releases the engine. Closing a Lifecycle without a running
// engine does nothing. The engine is released even if closing it
// fails.
func (l *Lifecycle) Close() error {
	if l.state != Running {
		return nil
	}

	err := l.engine.Close()
	l.engine = nil
	l.state = Terminated

	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	l.logger.Debug("engine closed", "episode", l.episodes)
	return nil
}
