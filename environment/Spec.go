package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion or an observation
type SpecType int

const (
	Action SpecType = iota
	Observation
)

func (s SpecType) String() string {
	if s == Action {
		return "Action"
	}
	return "Observation"
}

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action or observation in an environment.
//
// Shape holds the size of each dimension. The bounds are flattened in
// row-major order, so their length is the product of Shape.
type Spec struct {
	Shape      []int
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions or observations). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape []int, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	size := Size(shape)
	if size != lowerBound.Len() {
		panic(fmt.Sprintf("shape size %v must match lower bounds length %v",
			size, lowerBound.Len()))
	}
	if size != upperBound.Len() {
		panic(fmt.Sprintf("shape size %v must match upper bounds length %v",
			size, upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewBoxSpec returns a Spec whose every element shares the same bounds
func NewBoxSpec(shape []int, t SpecType, bounds r1.Interval,
	cardinality Cardinality) Spec {
	size := Size(shape)

	lower := make([]float64, size)
	upper := make([]float64, size)
	for i := range lower {
		lower[i] = bounds.Min
		upper[i] = bounds.Max
	}

	return NewSpec(shape, t, mat.NewVecDense(size, lower),
		mat.NewVecDense(size, upper), cardinality)
}

// Contains returns whether every element of m lies within the bounds
// of the Spec. The matrix is read in row-major order.
func (s Spec) Contains(m mat.Matrix) bool {
	r, c := m.Dims()
	if r*c != s.LowerBound.Len() {
		return false
	}

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			k := i*c + j
			if v < s.LowerBound.AtVec(k) || v > s.UpperBound.AtVec(k) {
				return false
			}
		}
	}
	return true
}

// Size returns the number of elements described by a shape
func Size(shape []int) int {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return size
}
