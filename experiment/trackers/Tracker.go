// Package trackers implements Trackers, which track and save data in
// an experiment
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/gojunction/timestep"
)

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %w", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode %v: %w",
			filename, err)
	}
	return data, nil
}

// save gob encodes data to filename
func save(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		file.Close()
		return fmt.Errorf("could not encode data: %w", err)
	}
	return file.Close()
}
