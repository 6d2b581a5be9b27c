package wrappers

import (
	"fmt"

	"github.com/samuelfneumann/gojunction/environment"
	"github.com/samuelfneumann/gojunction/timestep"
)

// StepLimit wraps an environment and ends episodes once a maximum
// number of steps has been taken, even if the wrapped environment
// would continue. The wrapped environment is not told about the
// truncation, it is reset as usual on the next call to Reset.
//
// StepLimit itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type StepLimit struct {
	environment.Environment
	episodeSteps int
	truncated    int
}

// NewStepLimit returns a new StepLimit which ends episodes after
// episodeSteps steps
func NewStepLimit(env environment.Environment,
	episodeSteps int) (*StepLimit, error) {
	if episodeSteps < 1 {
		return nil, fmt.Errorf("newStepLimit: step limit %v should be "+
			"positive", episodeSteps)
	}
	return &StepLimit{Environment: env, episodeSteps: episodeSteps}, nil
}

// Step takes a step in the wrapped environment. If the step limit is
// reached, the returned TimeStep is marked as the last of the episode.
func (s *StepLimit) Step(action int) (timestep.TimeStep, bool, error) {
	step, done, err := s.Environment.Step(action)
	if err != nil {
		return step, done, err
	}

	if !done && s.end(&step) {
		s.truncated++
		done = true
	}
	return step, done, nil
}

// end determines whether the episode should be ended. If so, it
// modifies the timestep so that its StepType field is timestep.Last
func (s *StepLimit) end(t *timestep.TimeStep) bool {
	if t.Number >= s.episodeSteps {
		t.StepType = timestep.Last
		return true
	}
	return false
}

// Truncated returns the number of episodes ended by the step limit
func (s *StepLimit) Truncated() int {
	return s.truncated
}
