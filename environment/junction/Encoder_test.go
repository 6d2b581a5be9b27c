package junction

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestEncoderGeometry(t *testing.T) {
	o := NewObservationEncoder(DefaultResolution, DefaultRoadLength)

	if step := o.Step(); math.Abs(step-12.142857) > 1e-6 {
		t.Errorf("step have(%v) want(%v)", step, 12.142857)
	}

	tests := []struct {
		x, y     float64
		row, col int
	}{
		{12, 12, 0, 0},
		{0, 0, 0, 0},
		{12.2, 24.2, 1, 1},
		{515, 515, 42, 42},
		{1019, 0, 83, 0},
		{1020, 1020, 83, 83}, // clamped
		{5000, -3, 83, 0},    // clamped
	}

	for _, test := range tests {
		row, col := o.Cell(test.x, test.y)
		if row != test.row || col != test.col {
			t.Errorf("cell(%v, %v) have(%v, %v) want(%v, %v)", test.x,
				test.y, row, col, test.row, test.col)
		}
	}
}

func TestEncodeVehicles(t *testing.T) {
	o := NewObservationEncoder(DefaultResolution, DefaultRoadLength)
	spec := (&Junction{encoder: o}).ObservationSpec()

	for _, n := range []int{0, 1, 10, 500} {
		vehicles := make([]Vehicle, n)
		for i := range vehicles {
			// Keep clear of the four centre cells
			vehicles[i] = Vehicle{
				ID: fmt.Sprint(i),
				X:  (float64(i%40) + 0.5) * o.Step(),
				Y:  (float64(i/40) + 0.5) * o.Step(),
			}
		}

		obs, err := o.Encode(Snapshot{LightState: "GrGr", Vehicles: vehicles})
		if err != nil {
			t.Fatal(err)
		}

		if r, c := obs.Dims(); r != DefaultResolution || c != DefaultResolution {
			t.Errorf("%v vehicles: shape have(%v, %v) want(%v, %v)", n, r,
				c, DefaultResolution, DefaultResolution)
		}
		if !spec.Contains(obs) {
			t.Errorf("%v vehicles: observation out of bounds", n)
		}

		for _, v := range vehicles {
			row, col := o.Cell(v.X, v.Y)
			if obs.At(row, col) != Occupied {
				t.Errorf("%v vehicles: vehicle %v at (%v, %v) not encoded",
					n, v.ID, row, col)
			}
		}

		occupied := 0
		for i := 0; i < DefaultResolution; i++ {
			for j := 0; j < DefaultResolution; j++ {
				if obs.At(i, j) == Occupied {
					occupied++
				}
			}
		}
		if occupied != n {
			t.Errorf("%v vehicles: have %v occupied cells", n, occupied)
		}
	}
}

func TestEncodeIndicators(t *testing.T) {
	o := NewObservationEncoder(DefaultResolution, DefaultRoadLength)
	c := DefaultResolution / 2
	cells := [4][2]int{{c, c - 1}, {c, c}, {c - 1, c}, {c - 1, c - 1}}

	for mask := 0; mask < 16; mask++ {
		state := []byte("rrrr")
		for i := range state {
			if mask&(1<<i) != 0 {
				state[i] = 'G'
			}
		}

		obs, err := o.Encode(Snapshot{LightState: string(state)})
		if err != nil {
			t.Fatal(err)
		}

		for i, cell := range cells {
			want := NotGreen
			if state[i] == 'G' {
				want = Green
			}
			if v := obs.At(cell[0], cell[1]); v != want {
				t.Errorf("state %v: indicator %v have(%v) want(%v)",
					string(state), i, v, want)
			}
		}
	}

	// Lower case g and yellow are not green
	obs, err := o.Encode(Snapshot{LightState: "gyGr"})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{NotGreen, NotGreen, Green, NotGreen} {
		if v := obs.At(cells[i][0], cells[i][1]); v != want {
			t.Errorf("state gyGr: indicator %v have(%v) want(%v)", i, v,
				want)
		}
	}
}

func TestEncodeIndicatorOverwritesVehicle(t *testing.T) {
	o := NewObservationEncoder(DefaultResolution, DefaultRoadLength)
	c := DefaultResolution / 2

	// A vehicle in the centre of the junction lands in the "left" cell
	x := float64(c)*o.Step() + 1
	obs, err := o.Encode(Snapshot{
		LightState: "rGrG",
		Vehicles:   []Vehicle{{ID: "centre", X: x, Y: x}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if v := obs.At(c, c); v != Green {
		t.Errorf("centre cell have(%v) want(%v)", v, Green)
	}
}

func TestEncodeShortState(t *testing.T) {
	o := NewObservationEncoder(DefaultResolution, DefaultRoadLength)

	if _, err := o.Encode(Snapshot{LightState: "GrG"}); err == nil {
		t.Error("encode should fail for a light state with 3 links")
	}

	// Longer states only use their first four links
	if _, err := o.Encode(Snapshot{LightState: "GrGrGrGr"}); err != nil {
		t.Error(err)
	}
}

func TestEncodeFreshGrid(t *testing.T) {
	o := NewObservationEncoder(4, 10)

	first, err := o.Encode(Snapshot{
		LightState: "GrGr",
		Vehicles:   []Vehicle{{ID: "a", X: 0, Y: 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.Encode(Snapshot{LightState: "GrGr"})
	if err != nil {
		t.Fatal(err)
	}

	if second.At(0, 0) != 0 {
		t.Error("encode should not keep vehicles of previous snapshots")
	}
	if first.At(0, 0) != Occupied {
		t.Error("encode should not modify previously returned grids")
	}
	if mat.Equal(first, second) {
		t.Error("grids should differ")
	}
}

func TestEncodeNonFinite(t *testing.T) {
	o := NewObservationEncoder(4, 10)

	grid, err := o.Encode(Snapshot{
		LightState: "GrGr",
		Vehicles: []Vehicle{
			{ID: "nan", X: math.NaN(), Y: 3},
			{ID: "inf", X: 3, Y: math.Inf(1)},
			{ID: "-inf", X: math.Inf(-1), Y: math.NaN()},
			{ID: "a", X: 19, Y: 19},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	occupied := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if grid.At(r, c) == Occupied {
				occupied++
			}
		}
	}
	if occupied != 1 || grid.At(3, 3) != Occupied {
		t.Errorf("only vehicle a should be placed, have %v occupied cells",
			occupied)
	}

	if row, col := o.Cell(math.NaN(), math.NaN()); row != 0 || col != 0 {
		t.Errorf("cell of NaN have(%v, %v) want(0, 0)", row, col)
	}
}

func TestNewObservationEncoderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("resolution 1 should panic")
		}
	}()
	NewObservationEncoder(1, DefaultRoadLength)
}

func BenchmarkEncode(b *testing.B) {
	o := NewObservationEncoder(DefaultResolution, DefaultRoadLength)
	vehicles := make([]Vehicle, 200)
	for i := range vehicles {
		vehicles[i] = Vehicle{X: float64(i) * 5, Y: 510}
	}
	s := Snapshot{LightState: "GrGr", Vehicles: vehicles}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := o.Encode(s); err != nil {
			b.Fatal(err)
		}
	}
}
