package junction

import (
	"github.com/samuelfneumann/gojunction/environment/sumo"
)

// Engine is a connection to a running traffic simulation. *sumo.Client
// implements Engine.
type Engine interface {
	SimulationStep() error
	SetPhase(tlsID string, phase int) error
	RedYellowGreenState(tlsID string) (string, error)
	VehicleIDs() ([]string, error)
	VehiclePosition(id string) (x, y float64, err error)
	VehicleSpeed(id string) (float64, error)
	VehicleMaxSpeed(id string) (float64, error)
	VehicleWaitingTime(id string) (float64, error)
	MinExpectedNumber() (int, error)
	StartingTeleportNumber() (int, error)
	Close() error
}

// LaunchOptions determine how an Engine is started
type LaunchOptions struct {
	ConfigFile string
	Visualize  bool
}

// Launcher starts Engines
type Launcher interface {
	Launch(LaunchOptions) (Engine, error)
}

// SumoLauncher launches SUMO processes
type SumoLauncher struct {
	sumo.Launcher
}

// Launch starts SUMO, using sumo-gui if the options ask for
// visualization
func (s SumoLauncher) Launch(o LaunchOptions) (Engine, error) {
	c, err := s.Start(sumo.Options{ConfigFile: o.ConfigFile, GUI: o.Visualize})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Vehicle is the state of a single vehicle on one tick
type Vehicle struct {
	ID          string
	X, Y        float64
	Speed       float64
	MaxSpeed    float64
	WaitingTime float64
}

// Snapshot is the state of the simulation read after a tick
type Snapshot struct {
	LightState string
	Teleports  int
	Vehicles   []Vehicle
}

// snapshot queries the engine for the state of the traffic light
// tlsID and of every vehicle in the network
func snapshot(e Engine, tlsID string) (Snapshot, error) {
	state, err := e.RedYellowGreenState(tlsID)
	if err != nil {
		return Snapshot{}, err
	}
	teleports, err := e.StartingTeleportNumber()
	if err != nil {
		return Snapshot{}, err
	}
	ids, err := e.VehicleIDs()
	if err != nil {
		return Snapshot{}, err
	}

	vehicles := make([]Vehicle, len(ids))
	for i, id := range ids {
		v := Vehicle{ID: id}
		if v.X, v.Y, err = e.VehiclePosition(id); err != nil {
			return Snapshot{}, err
		}
		if v.Speed, err = e.VehicleSpeed(id); err != nil {
			return Snapshot{}, err
		}
		if v.MaxSpeed, err = e.VehicleMaxSpeed(id); err != nil {
			return Snapshot{}, err
		}
		if v.WaitingTime, err = e.VehicleWaitingTime(id); err != nil {
			return Snapshot{}, err
		}
		vehicles[i] = v
	}

	return Snapshot{LightState: state, Teleports: teleports,
		Vehicles: vehicles}, nil
}
