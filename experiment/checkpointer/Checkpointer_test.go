package checkpointer

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	ts "github.com/samuelfneumann/gojunction/timestep"
	"gonum.org/v1/gonum/mat"
)

func TestFilenameEnumerator(t *testing.T) {
	next := FilenameEnumerator(0, "out", "frame", ".png")

	for _, want := range []string{"frame00001.png", "frame00002.png"} {
		if got := next(); got != filepath.Join("out", want) {
			t.Errorf("filename have(%v) want(%v)", got,
				filepath.Join("out", want))
		}
	}
}

func TestNStep(t *testing.T) {
	var saved []int
	var names []string
	saver := SaverFunc(func(step ts.TimeStep, filename string) error {
		saved = append(saved, step.Number)
		names = append(names, filename)
		return nil
	})
	c := NewNStep(3, saver, FilenameEnumerator(10, "", "f", ".bin"))

	for i := 0; i < 8; i++ {
		if err := c.Checkpoint(ts.New(ts.Mid, 0, 1, nil, i)); err != nil {
			t.Fatal(err)
		}
	}

	want := []int{0, 3, 6}
	if len(saved) != len(want) {
		t.Fatalf("saved steps have(%v) want(%v)", saved, want)
	}
	for i := range want {
		if saved[i] != want[i] {
			t.Errorf("saved steps have(%v) want(%v)", saved, want)
			break
		}
	}
	if names[2] != "f00013.bin" {
		t.Errorf("third filename have(%v) want(f00013.bin)", names[2])
	}
}

func TestFrame(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "frame.png")
	obs := mat.NewDense(4, 4, nil)
	obs.Set(0, 0, 1)

	if err := Frame(3).Save(ts.New(ts.Mid, 0, 1, obs, 1), filename); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 12 {
		t.Errorf("image size have(%v, %v) want(12, 12)", b.Dx(), b.Dy())
	}

	if err := Frame(3).Save(ts.TimeStep{}, filename); err == nil {
		t.Error("timesteps without observations cannot be rendered")
	}
}
