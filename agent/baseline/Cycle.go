// Package baseline implements fixed, non-learning traffic light
// controllers to compare learned policies against
package baseline

import (
	"fmt"

	"github.com/samuelfneumann/gojunction/timestep"
)

// Cycle alternates between the two traffic light phases, holding
// phase p for durations[p] consecutive steps. It ignores observations.
type Cycle struct {
	durations    [2]int
	initialPhase int

	phase int
	held  int // steps the current phase has been selected for
}

// NewPhaseDependent returns a Cycle which holds phase p for
// durations[p] steps, starting with initialPhase
func NewPhaseDependent(durations [2]int, initialPhase int) (*Cycle, error) {
	if durations[0] < 1 || durations[1] < 1 {
		return nil, fmt.Errorf("newPhaseDependent: durations %v should be "+
			"positive", durations)
	}
	if initialPhase != 0 && initialPhase != 1 {
		return nil, fmt.Errorf("newPhaseDependent: initial phase %v ∉ "+
			"{0, 1}", initialPhase)
	}

	return &Cycle{
		durations:    durations,
		initialPhase: initialPhase,
		phase:        initialPhase,
	}, nil
}

// NewFixedCycle returns a Cycle which keeps each phase for one step
// plus period more steps before switching, so that a period of 20
// switches phases every 21 steps
func NewFixedCycle(period, initialPhase int) (*Cycle, error) {
	if period < 0 {
		return nil, fmt.Errorf("newFixedCycle: period %v should be "+
			"non-negative", period)
	}

	c, err := NewPhaseDependent([2]int{period + 1, period + 1}, initialPhase)
	if err != nil {
		return nil, fmt.Errorf("newFixedCycle: %w", err)
	}
	return c, nil
}

// SelectAction returns the phase to apply on the next step
func (c *Cycle) SelectAction(timestep.TimeStep) int {
	if c.held >= c.durations[c.phase] {
		c.phase = 1 - c.phase
		c.held = 0
	}
	c.held++
	return c.phase
}

// Reset restarts the cycle from the initial phase
func (c *Cycle) Reset() {
	c.phase = c.initialPhase
	c.held = 0
}

func (c *Cycle) String() string {
	return fmt.Sprintf("Cycle(%v, %v)", c.durations[0], c.durations[1])
}
