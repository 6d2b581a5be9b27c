// Package agent defines the agent interfaces used by experiments
package agent

import (
	"github.com/samuelfneumann/gojunction/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns from the transitions
// it observes, and a Policy which chooses actions in each state.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action int, nextObs timestep.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy chooses a discrete action in each state
type Policy interface {
	SelectAction(t timestep.TimeStep) int

	// Reset prepares the policy for a new episode
	Reset()
}

// nonLearning is an Agent which never learns
type nonLearning struct {
	Policy
}

// NonLearning returns an Agent which selects actions with p and
// ignores everything it observes. The policy is reset whenever the
// first step of an episode is observed.
func NonLearning(p Policy) Agent {
	return nonLearning{p}
}

func (n nonLearning) Step() error { return nil }
func (n nonLearning) Observe(int, timestep.TimeStep) error { return nil }
func (n nonLearning) EndEpisode() {}

func (n nonLearning) ObserveFirst(timestep.TimeStep) error {
	n.Policy.Reset()
	return nil
}
