package junction

import (
	"image"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/mat"
)

// Render draws an observation grid with cellSize pixels per cell.
// Rows of the grid run along the x axis (left to right) and columns
// along the y axis (bottom to top), so the image matches the layout of
// the network. Occupied cells are white and indicator cells are green
// or red.
func Render(obs mat.Matrix, cellSize int) image.Image {
	rows, cols := obs.Dims()
	size := float64(cellSize)

	dc := gg.NewContext(rows*cellSize, cols*cellSize)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			switch obs.At(i, j) {
			case 0:
				continue
			case Occupied:
				dc.SetRGB(1, 1, 1)
			case Green:
				dc.SetRGB(0, 0.8, 0)
			default:
				dc.SetRGB(0.8, 0, 0)
			}

			dc.DrawRectangle(float64(i)*size, float64(cols-1-j)*size, size,
				size)
			dc.Fill()
		}
	}

	return dc.Image()
}

// Render draws the most recent observation, see Render
func (j *Junction) Render(cellSize int) image.Image {
	obs := j.lastStep.Observation
	if obs == nil {
		obs = j.encoder.Zero()
	}
	return Render(obs, cellSize)
}
