package junction

import (
	"math"
	"testing"
)

func TestRewardValue(t *testing.T) {
	r, err := NewRewardCalculator(DefaultWeights)
	if err != nil {
		t.Fatal(err)
	}

	stats := Stats{Teleports: 2, Switches: 3, Delay: 1.5, WaitTime: 10}
	if reward := r.Reward(stats); math.Abs(reward-(-5.1)) > 1e-9 {
		t.Errorf("reward have(%v) want(%v)", reward, -5.1)
	}

	if reward := r.Reward(Stats{}); reward != 0 {
		t.Errorf("reward of empty stats have(%v) want(0)", reward)
	}
}

func TestRewardNeverPositive(t *testing.T) {
	weights := []Weights{
		DefaultWeights,
		{},
		{Teleport: 1},
		{Switch: 2, WaitTime: 0.5},
		{Teleport: 0.3, Switch: 0.3, Delay: 0.3, WaitTime: 0.3},
	}

	for _, w := range weights {
		r, err := NewRewardCalculator(w)
		if err != nil {
			t.Fatal(err)
		}

		for teleports := 0; teleports < 3; teleports++ {
			for switches := 0; switches < 50; switches += 7 {
				for _, delay := range []float64{0, 0.5, 12} {
					for _, wait := range []float64{0, 1, 300} {
						s := Stats{teleports, switches, delay, wait}
						if reward := r.Reward(s); reward > 0 {
							t.Errorf("weights %+v, stats %+v: reward %v > 0",
								w, s, reward)
						}
					}
				}
			}
		}
	}
}

func TestNewRewardCalculatorNegative(t *testing.T) {
	for _, w := range []Weights{
		{Teleport: -0.1},
		{Switch: -1},
		{Delay: -1e-9},
		{WaitTime: -4},
	} {
		if _, err := NewRewardCalculator(w); err == nil {
			t.Errorf("weights %+v should be rejected", w)
		}
	}
}

func TestDelay(t *testing.T) {
	vehicles := []Vehicle{
		{ID: "stopped", Speed: 0, MaxSpeed: 10},
		{ID: "half", Speed: 5, MaxSpeed: 10},
		{ID: "full", Speed: 10, MaxSpeed: 10},
		{ID: "fast", Speed: 12, MaxSpeed: 10},
		{ID: "parked", Speed: 0, MaxSpeed: 0},
	}

	if d := Delay(vehicles); math.Abs(d-1.5) > 1e-9 {
		t.Errorf("delay have(%v) want(%v)", d, 1.5)
	}
	if d := Delay(nil); d != 0 {
		t.Errorf("delay of no vehicles have(%v) want(0)", d)
	}
}

func TestWaitTime(t *testing.T) {
	vehicles := []Vehicle{
		{ID: "a", WaitingTime: 3},
		{ID: "b", WaitingTime: 0},
		{ID: "c", WaitingTime: 7.5},
	}

	if w := WaitTime(vehicles); w != 10.5 {
		t.Errorf("wait time have(%v) want(%v)", w, 10.5)
	}
}

func TestNewStats(t *testing.T) {
	s := NewStats(Snapshot{
		LightState: PhaseZeroState,
		Teleports:  4,
		Vehicles: []Vehicle{
			{ID: "a", Speed: 0, MaxSpeed: 10, WaitingTime: 2},
			{ID: "b", Speed: 10, MaxSpeed: 10, WaitingTime: 1},
		},
	}, 6)

	want := Stats{Teleports: 4, Switches: 6, Delay: 1, WaitTime: 3}
	if s != want {
		t.Errorf("stats have(%+v) want(%+v)", s, want)
	}
}

func TestSwitched(t *testing.T) {
	tests := []struct {
		state  string
		action int
		want   bool
	}{
		{PhaseZeroState, 0, false},
		{PhaseZeroState, 1, true},
		{PhaseOneState, 0, true},
		{PhaseOneState, 1, false},
		{"yryr", 0, false},
		{"yryr", 1, false},
		{"ryry", 0, false},
		{"ryry", 1, false},
		{"GGGG", 1, false},
		{"", 0, false},
	}

	for _, test := range tests {
		if got := Switched(test.state, test.action); got != test.want {
			t.Errorf("switched(%q, %v) have(%v) want(%v)", test.state,
				test.action, got, test.want)
		}
	}
}
