package junction

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samuelfneumann/gojunction/utils/floatutils"
)

// Steady light states of the two phases. Switch detection only knows
// these two states, so it holds for a 2-phase junction with 4
// approaches only.
const (
	PhaseZeroState = "GrGr"
	PhaseOneState  = "rGrG"
)

// Switched returns whether taking action in light state state switches
// the traffic light away from a steady green phase
func Switched(state string, action int) bool {
	return (state == PhaseZeroState && action == 1) ||
		(state == PhaseOneState && action == 0)
}

// Weights weigh each term of the reward
type Weights struct {
	Teleport float64 `json:"teleport"`
	Switch   float64 `json:"switch"`
	Delay    float64 `json:"delay"`
	WaitTime float64 `json:"wait_time"`
}

// DefaultWeights weighs congestion four times as much as teleports and
// light switches
var DefaultWeights = Weights{
	Teleport: 0.1,
	Switch:   0.1,
	Delay:    0.4,
	WaitTime: 0.4,
}

func (w Weights) validate() error {
	if w.Teleport < 0 || w.Switch < 0 || w.Delay < 0 || w.WaitTime < 0 {
		return fmt.Errorf("reward weights %+v should be non-negative", w)
	}
	return nil
}

// Stats are the simulation statistics a reward is computed from
type Stats struct {
	Teleports int     // vehicles teleported on this tick
	Switches  int     // light switches since the start of the episode
	Delay     float64 // see Delay
	WaitTime  float64 // see WaitTime
}

// NewStats computes the Stats of a Snapshot
func NewStats(s Snapshot, switches int) Stats {
	return Stats{
		Teleports: s.Teleports,
		Switches:  switches,
		Delay:     Delay(s.Vehicles),
		WaitTime:  WaitTime(s.Vehicles),
	}
}

// RewardCalculator computes the cost-style reward of a tick. Rewards
// are never positive.
type RewardCalculator struct {
	weights Weights
}

// NewRewardCalculator returns a RewardCalculator with the given weights.
// Weights must be non-negative.
func NewRewardCalculator(w Weights) (*RewardCalculator, error) {
	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("newRewardCalculator: %w", err)
	}
	return &RewardCalculator{w}, nil
}

// Reward returns the negated weighted sum of the statistics
func (r *RewardCalculator) Reward(s Stats) float64 {
	cost := r.weights.Teleport*float64(s.Teleports) +
		r.weights.Switch*float64(s.Switches) +
		r.weights.Delay*s.Delay +
		r.weights.WaitTime*s.WaitTime

	return -cost
}

// Delay returns the summed relative speed loss (max - speed) / max of
// the vehicles. Each vehicle's loss is clipped to [0, 1], and vehicles
// with a maximum speed of 0 are skipped.
func Delay(vehicles []Vehicle) float64 {
	return lo.SumBy(vehicles, func(v Vehicle) float64 {
		if v.MaxSpeed <= 0 {
			return 0
		}
		return floatutils.Clip((v.MaxSpeed-v.Speed)/v.MaxSpeed, 0, 1)
	})
}

// WaitTime returns the summed waiting time of the vehicles
func WaitTime(vehicles []Vehicle) float64 {
	return lo.SumBy(vehicles, func(v Vehicle) float64 {
		return v.WaitingTime
	})
}
