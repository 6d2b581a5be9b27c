package junction

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gojunction/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

// Values of the traffic light indicator cells
const (
	NotGreen  float64 = 0.333
	Green     float64 = 0.666
	GreenMark byte    = 'G'
	Occupied  float64 = 1.0
)

// cell is a (row, column) index into the observation grid
type cell struct {
	row, col int
}

// ObservationEncoder discretizes the network into a square grid. A
// cell is 1.0 if at least one vehicle is in it and 0.0 otherwise. Four
// cells at the centre of the grid hold the state of the traffic light
// of each approach (down, left, up, right).
//
// Vehicles are mapped to row ⌊x/step⌋ and column ⌊y/step⌋ where step
// is twice the road length divided by the resolution. Vehicles outside
// the grid are clamped to its border.
type ObservationEncoder struct {
	resolution int
	step       float64
	indicators [4]cell
}

// NewObservationEncoder returns an ObservationEncoder producing
// resolution x resolution grids over a junction with arms of length
// roadLength
func NewObservationEncoder(resolution int,
	roadLength float64) *ObservationEncoder {
	if resolution < 2 {
		panic(fmt.Sprintf("newObservationEncoder: resolution %v < 2",
			resolution))
	}

	centre := resolution / 2
	return &ObservationEncoder{
		resolution: resolution,
		step:       roadLength * 2 / float64(resolution),
		indicators: [4]cell{
			{centre, centre - 1},     // down
			{centre, centre},         // left
			{centre - 1, centre},     // up
			{centre - 1, centre - 1}, // right
		},
	}
}

// Resolution returns the number of rows (and columns) of the grid
func (o *ObservationEncoder) Resolution() int {
	return o.resolution
}

// Step returns the side length of a single cell
func (o *ObservationEncoder) Step() float64 {
	return o.step
}

// Cell returns the grid cell a position falls in
func (o *ObservationEncoder) Cell(x, y float64) (row, col int) {
	return o.index(x), o.index(y)
}

func (o *ObservationEncoder) index(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	i := math.Floor(v / o.step)
	return int(floatutils.Clip(i, 0, float64(o.resolution-1)))
}

// Zero returns an empty grid
func (o *ObservationEncoder) Zero() *mat.Dense {
	return mat.NewDense(o.resolution, o.resolution, nil)
}

// Encode returns a new grid holding the vehicles and traffic light
// state of a Snapshot. The light state must hold at least one
// character for each of the four approaches. Vehicles without a finite
// position are skipped.
func (o *ObservationEncoder) Encode(s Snapshot) (*mat.Dense, error) {
	if len(s.LightState) < len(o.indicators) {
		return nil, fmt.Errorf("encode: light state %q has fewer than %v "+
			"links", s.LightState, len(o.indicators))
	}

	grid := o.Zero()
	for _, v := range s.Vehicles {
		if !finite(v.X) || !finite(v.Y) {
			continue
		}
		grid.Set(o.index(v.X), o.index(v.Y), Occupied)
	}

	for i, c := range o.indicators {
		value := NotGreen
		if s.LightState[i] == GreenMark {
			value = Green
		}
		grid.Set(c.row, c.col, value)
	}

	return grid, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
