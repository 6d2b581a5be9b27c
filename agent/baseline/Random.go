package baseline

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/gojunction/timestep"
	"gonum.org/v1/gonum/stat/distuv"
)

// Random selects each phase uniformly at random
type Random struct {
	dist distuv.Categorical
}

// NewRandom returns a new Random policy
func NewRandom(seed uint64) *Random {
	dist := distuv.NewCategorical([]float64{0.5, 0.5}, rand.NewSource(seed))
	return &Random{dist}
}

// SelectAction samples a phase
func (r *Random) SelectAction(timestep.TimeStep) int {
	return int(r.dist.Rand())
}

// Reset does nothing, the random stream continues across episodes
func (r *Random) Reset() {}
