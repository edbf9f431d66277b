package population

import (
	"math/rand"

	"github.com/evoforge/evonn-go/pkg/core"
)

// MateFunc produces offspring genomes from a mating pool. Implementations
// must not mutate the parents; offspring are fresh genomes. The full
// population is provided for operators that sample additional parents.
type MateFunc func(matingPool, population []core.Genome, rng *rand.Rand) []core.Genome

// MutateFunc mutates offspring in place. The lower and upper weight limits
// bound the mutated values.
type MutateFunc func(offspring, population []core.Genome, rng *rand.Rand, lower, upper float64)

// Recombination is the tagged variant describing how offspring are produced:
// either one combined crossover+mutation operator, or separate crossover and
// mutation operators. The variant is fixed at population construction.
type Recombination interface {
	isRecombination()
}

// Combined performs crossover and mutation in a single operator.
type Combined struct {
	Mate MateFunc
}

func (Combined) isRecombination() {}

// Separate performs crossover and mutation as two operators; mutation runs
// in place over the crossover offspring.
type Separate struct {
	Crossover MateFunc
	Mutation  MutateFunc
}

func (Separate) isRecombination() {}
