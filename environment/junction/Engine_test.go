package junction

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

// fakeEngine is an in-memory Engine. Phase 0 shows state GrGr and
// phase 1 shows state rGrG unless state is set.
type fakeEngine struct {
	phase    int
	state    string // overrides the phase state if not empty
	vehicles []Vehicle

	// remaining[i] is the minimum expected number of vehicles after
	// step i+1. Once exhausted, 0 is returned. A nil remaining never
	// runs out of vehicles.
	remaining []int
	teleports int

	steps  int
	phases []int
	closed bool

	setPhaseErr error
	stepErr     error
}

func (f *fakeEngine) SimulationStep() error {
	if f.closed {
		return errors.New("engine closed")
	}
	if f.stepErr != nil {
		return f.stepErr
	}
	f.steps++
	return nil
}

func (f *fakeEngine) SetPhase(tlsID string, phase int) error {
	if f.setPhaseErr != nil {
		return f.setPhaseErr
	}
	if tlsID != DefaultJunctionID {
		return fmt.Errorf("no traffic light %q", tlsID)
	}
	f.phase = phase
	f.phases = append(f.phases, phase)
	return nil
}

func (f *fakeEngine) RedYellowGreenState(string) (string, error) {
	if f.state != "" {
		return f.state, nil
	}
	if f.phase == 1 {
		return PhaseOneState, nil
	}
	return PhaseZeroState, nil
}

func (f *fakeEngine) VehicleIDs() ([]string, error) {
	ids := make([]string, len(f.vehicles))
	for i, v := range f.vehicles {
		ids[i] = v.ID
	}
	return ids, nil
}

func (f *fakeEngine) vehicle(id string) (Vehicle, error) {
	for _, v := range f.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return Vehicle{}, fmt.Errorf("vehicle %q is not known", id)
}

func (f *fakeEngine) VehiclePosition(id string) (float64, float64, error) {
	v, err := f.vehicle(id)
	return v.X, v.Y, err
}

func (f *fakeEngine) VehicleSpeed(id string) (float64, error) {
	v, err := f.vehicle(id)
	return v.Speed, err
}

func (f *fakeEngine) VehicleMaxSpeed(id string) (float64, error) {
	v, err := f.vehicle(id)
	return v.MaxSpeed, err
}

func (f *fakeEngine) VehicleWaitingTime(id string) (float64, error) {
	v, err := f.vehicle(id)
	return v.WaitingTime, err
}

func (f *fakeEngine) MinExpectedNumber() (int, error) {
	i := f.steps - 1
	if i < 0 || f.remaining == nil {
		return 1, nil
	}
	if i < len(f.remaining) {
		return f.remaining[i], nil
	}
	return 0, nil
}

func (f *fakeEngine) StartingTeleportNumber() (int, error) {
	return f.teleports, nil
}

func (f *fakeEngine) Close() error {
	if f.closed {
		return errors.New("engine already closed")
	}
	f.closed = true
	return nil
}

// fakeLauncher launches fakeEngines. On every launch it checks that
// all previously launched engines have been closed and records the
// demand schedule found in the route file.
type fakeLauncher struct {
	t         *testing.T
	routeFile string
	newEngine func() *fakeEngine
	err       error

	engines   []*fakeEngine
	options   []LaunchOptions
	schedules []Schedule
}

func (l *fakeLauncher) Launch(o LaunchOptions) (Engine, error) {
	if l.err != nil {
		return nil, l.err
	}

	for i, e := range l.engines {
		if !e.closed {
			l.t.Errorf("launch: engine %v is still running", i)
		}
	}

	f, err := os.Open(l.routeFile)
	if err != nil {
		l.t.Errorf("launch: no demand schedule: %v", err)
	} else {
		s, err := ReadSchedule(f)
		f.Close()
		if err != nil {
			l.t.Errorf("launch: %v", err)
		}
		l.schedules = append(l.schedules, s)
	}

	e := &fakeEngine{}
	if l.newEngine != nil {
		e = l.newEngine()
	}
	l.engines = append(l.engines, e)
	l.options = append(l.options, o)
	return e, nil
}

// last returns the most recently launched engine
func (l *fakeLauncher) last() *fakeEngine {
	return l.engines[len(l.engines)-1]
}

// testConfig returns the default configuration with the route file in
// a temporary directory and short episodes
func testConfig(t *testing.T) Config {
	c := DefaultConfig()
	c.RouteFile = filepath.Join(t.TempDir(), "cross.rou.xml")
	c.EpisodeTicks = 200
	return c
}

func newFakeLauncher(t *testing.T, c Config) *fakeLauncher {
	return &fakeLauncher{t: t, routeFile: c.RouteFile}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
