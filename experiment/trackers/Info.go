package trackers

import (
	"fmt"

	ts "github.com/samuelfneumann/gojunction/timestep"
)

// Info tracks one of the values a TimeStep carries in its Info map,
// caching one value per episode. A total Info tracker sums the value
// over all timesteps of an episode, otherwise the value of the last
// timestep is kept. Timesteps without the key count as 0.
type Info struct {
	key      string
	total    bool
	current  float64
	values   []float64
	filename string
}

// NewInfoTotal returns an Info tracker which saves the per-episode sum
// of the Info value key, such as the number of teleported vehicles
func NewInfoTotal(key, filename string) *Info {
	return &Info{key: key, total: true, filename: filename}
}

// NewInfoFinal returns an Info tracker which saves the Info value key
// of the last timestep of each episode, such as the number of light
// switches
func NewInfoFinal(key, filename string) *Info {
	return &Info{key: key, filename: filename}
}

// Track tracks the Info value of a timestep
func (i *Info) Track(t ts.TimeStep) {
	if t.First() {
		i.current = 0
	}

	if i.total {
		i.current += t.Info[i.key]
	} else {
		i.current = t.Info[i.key]
	}

	if t.Last() {
		i.values = append(i.values, i.current)
		i.current = 0
	}
}

// Key returns the Info key being tracked
func (i *Info) Key() string {
	return i.key
}

// Data returns the values of all finished episodes
func (i *Info) Data() []float64 {
	return append([]float64(nil), i.values...)
}

// Save saves the tracked values to disk
func (i *Info) Save() error {
	if err := save(i.filename, i.values); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
