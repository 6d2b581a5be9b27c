package checkpointer

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/gojunction/environment/junction"
	ts "github.com/samuelfneumann/gojunction/timestep"
)

// Frame returns a Saver which renders the observation of a TimeStep to
// a PNG image with cellSize pixels per grid cell
func Frame(cellSize int) Saver {
	return SaverFunc(func(t ts.TimeStep, filename string) error {
		if t.Observation == nil {
			return fmt.Errorf("frame: timestep %v has no observation",
				t.Number)
		}

		img := junction.Render(t.Observation, cellSize)
		if err := gg.SavePNG(filename, img); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		return nil
	})
}
