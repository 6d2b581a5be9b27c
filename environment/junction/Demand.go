package junction

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Direction is one of the four directions vehicles can cross the
// junction in
type Direction int

const (
	WestEast Direction = iota
	EastWest
	NorthSouth
	SouthNorth
)

// Directions lists every direction in the order demand is sampled
var Directions = [...]Direction{WestEast, EastWest, NorthSouth, SouthNorth}

// Route returns the id of the route vehicles travelling in direction
// d follow
func (d Direction) Route() string {
	switch d {
	case WestEast:
		return "right"
	case EastWest:
		return "left"
	case NorthSouth:
		return "down"
	case SouthNorth:
		return "up"
	}
	panic(fmt.Sprintf("route: no such direction %d", int(d)))
}

func (d Direction) String() string {
	switch d {
	case WestEast:
		return "WestEast"
	case EastWest:
		return "EastWest"
	case NorthSouth:
		return "NorthSouth"
	case SouthNorth:
		return "SouthNorth"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Arrival holds the probability that a vehicle enters the network in
// each direction on a single tick
type Arrival struct {
	WestEast   float64 `json:"west_east"`
	EastWest   float64 `json:"east_west"`
	NorthSouth float64 `json:"north_south"`
	SouthNorth float64 `json:"south_north"`
}

// DefaultArrival is light east-west traffic and heavy north-south
// traffic
var DefaultArrival = Arrival{
	WestEast:   1. / 10,
	EastWest:   1. / 10,
	NorthSouth: .3,
	SouthNorth: .3,
}

// Probability returns the arrival probability of direction d
func (a Arrival) Probability(d Direction) float64 {
	switch d {
	case WestEast:
		return a.WestEast
	case EastWest:
		return a.EastWest
	case NorthSouth:
		return a.NorthSouth
	case SouthNorth:
		return a.SouthNorth
	}
	panic(fmt.Sprintf("probability: no such direction %d", int(d)))
}

// Departure is a single vehicle entering the network
type Departure struct {
	ID     string
	Route  string
	Depart int // tick
}

// Schedule is the ordered list of vehicle departures of one episode
type Schedule struct {
	Seed     uint64
	Vehicles []Departure
}

// DemandGenerator generates seeded, stochastic vehicle departure
// schedules
type DemandGenerator struct {
	ticks   int
	arrival Arrival
}

// NewDemandGenerator returns a DemandGenerator producing schedules
// over ticks ticks with the given arrival probabilities. Probabilities
// outside [0, 1] are not rejected: below 0 no vehicle is ever sent,
// above 1 a vehicle is sent on every tick.
func NewDemandGenerator(ticks int, arrival Arrival) *DemandGenerator {
	return &DemandGenerator{ticks: ticks, arrival: arrival}
}

// Generate returns the schedule for a seed. On each tick, one uniform
// sample is drawn for each direction in the order of Directions, and a
// vehicle departs in that direction if the sample is below the
// direction's arrival probability. The same seed always results in the
// same schedule.
func (d *DemandGenerator) Generate(seed uint64) Schedule {
	rng := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)}

	var vehicles []Departure
	for tick := 0; tick < d.ticks; tick++ {
		for _, dir := range Directions {
			if rng.Rand() < d.arrival.Probability(dir) {
				route := dir.Route()
				vehicles = append(vehicles, Departure{
					ID:     fmt.Sprintf("%v_%d", route, len(vehicles)),
					Route:  route,
					Depart: tick,
				})
			}
		}
	}

	return Schedule{Seed: seed, Vehicles: vehicles}
}

// Vehicle type and route definitions written before the departures
const (
	vehicleType = "typeWE"
)

var routeEdges = map[Direction]string{
	WestEast:   "51o 1i 2o 52i",
	EastWest:   "52o 2i 1o 51i",
	SouthNorth: "53o 3i 4o 54i",
	NorthSouth: "54o 4i 3o 53i",
}

type routesXML struct {
	XMLName  xml.Name     `xml:"routes"`
	VTypes   []vTypeXML   `xml:"vType"`
	Routes   []routeXML   `xml:"route"`
	Vehicles []vehicleXML `xml:"vehicle"`
}

type vTypeXML struct {
	ID       string  `xml:"id,attr"`
	Accel    float64 `xml:"accel,attr"`
	Decel    float64 `xml:"decel,attr"`
	Sigma    float64 `xml:"sigma,attr"`
	Length   float64 `xml:"length,attr"`
	MinGap   float64 `xml:"minGap,attr"`
	MaxSpeed float64 `xml:"maxSpeed,attr"`
	GUIShape string  `xml:"guiShape,attr"`
}

type routeXML struct {
	ID    string `xml:"id,attr"`
	Edges string `xml:"edges,attr"`
}

type vehicleXML struct {
	ID     string `xml:"id,attr"`
	Type   string `xml:"type,attr"`
	Route  string `xml:"route,attr"`
	Depart int    `xml:"depart,attr"`
}

// WriteTo writes the schedule as a SUMO route file: the vehicle type
// and the four routes through the junction, followed by one vehicle
// element per departure.
func (s Schedule) WriteTo(w io.Writer) (int64, error) {
	doc := routesXML{
		VTypes: []vTypeXML{{
			ID:       vehicleType,
			Accel:    0.8,
			Decel:    4.5,
			Sigma:    0.5,
			Length:   5,
			MinGap:   2.5,
			MaxSpeed: 16.67,
			GUIShape: "passenger",
		}},
	}

	for _, dir := range []Direction{WestEast, EastWest, SouthNorth,
		NorthSouth} {
		doc.Routes = append(doc.Routes, routeXML{
			ID:    dir.Route(),
			Edges: routeEdges[dir],
		})
	}

	doc.Vehicles = make([]vehicleXML, len(s.Vehicles))
	for i, v := range s.Vehicles {
		doc.Vehicles[i] = vehicleXML{
			ID:     v.ID,
			Type:   vehicleType,
			Route:  v.Route,
			Depart: v.Depart,
		}
	}

	data, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return 0, fmt.Errorf("writeTo: %w", err)
	}
	data = append(data, '\n')

	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile writes the schedule to path. The file is first written
// under a temporary name in the same directory and then renamed, so
// that a reader never sees a partially written schedule.
func (s Schedule) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".routes-*.xml")
	if err != nil {
		return fmt.Errorf("writeFile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := s.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writeFile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writeFile: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writeFile: %w", err)
	}
	return nil
}

// ReadSchedule parses the departures of a route file written by
// Schedule.WriteTo. The seed of the returned Schedule is 0.
func ReadSchedule(r io.Reader) (Schedule, error) {
	var doc routesXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Schedule{}, fmt.Errorf("readSchedule: %w", err)
	}

	vehicles := make([]Departure, len(doc.Vehicles))
	for i, v := range doc.Vehicles {
		vehicles[i] = Departure{ID: v.ID, Route: v.Route, Depart: v.Depart}
	}
	return Schedule{Vehicles: vehicles}, nil
}

// Bytes returns the route file content of the schedule
func (s Schedule) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("bytes: %w", err)
	}
	return buf.Bytes(), nil
}
