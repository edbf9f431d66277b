package recombination

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/core"
	"github.com/evoforge/evonn-go/pkg/errors"
)

// FlatGenerator produces random flat genomes within the configured size and
// weight bounds. ProbOmit is the probability of zero-initializing a weight,
// which seeds the population with sparse structures.
type FlatGenerator struct {
	NumFeatures int
	NumNodes    int
	WLow        float64
	WHigh       float64
	ProbOmit    float64
}

// Generate draws one random flat genome.
func (g FlatGenerator) Generate(rng *rand.Rand) (*core.FlatGenome, error) {
	if g.NumFeatures < 1 || g.NumNodes < 1 {
		return nil, errors.New(errors.InvalidConfig, "flat generator requires positive feature and node counts")
	}
	w := mat.NewDense(g.NumFeatures+1, g.NumNodes, nil)
	for i := 0; i < g.NumFeatures+1; i++ {
		for j := 0; j < g.NumNodes; j++ {
			w.Set(i, j, g.drawWeight(rng))
		}
	}
	return core.NewFlatGenome(w)
}

// GenerateBatch draws an initial population of n genomes.
func (g FlatGenerator) GenerateBatch(rng *rand.Rand, n int) ([]core.Genome, error) {
	out := make([]core.Genome, 0, n)
	for i := 0; i < n; i++ {
		genome, err := g.Generate(rng)
		if err != nil {
			return nil, err
		}
		out = append(out, genome)
	}
	return out, nil
}

func (g FlatGenerator) drawWeight(rng *rand.Rand) float64 {
	if g.ProbOmit > 0 && rng.Float64() < g.ProbOmit {
		return 0
	}
	return g.WLow + rng.Float64()*(g.WHigh-g.WLow)
}

// ModularGenerator produces random modular genomes over fixed feature
// subsets. Each subnetwork receives a random number of layers and nodes per
// layer, bounded by MaxLayers and MaxNodes.
type ModularGenerator struct {
	Subsets   core.FeatureSubsets
	MaxLayers int
	MaxNodes  int
	WLow      float64
	WHigh     float64
	ProbOmit  float64
}

// Generate draws one random modular genome.
func (g ModularGenerator) Generate(rng *rand.Rand) (*core.ModularGenome, error) {
	if len(g.Subsets) == 0 {
		return nil, errors.New(errors.InvalidConfig, "modular generator requires feature subsets")
	}
	if g.MaxLayers < 1 || g.MaxNodes < 1 {
		return nil, errors.New(errors.InvalidConfig, "modular generator requires positive layer and node bounds")
	}
	genome, err := core.NewModularGenome(len(g.Subsets))
	if err != nil {
		return nil, err
	}
	for s, subset := range g.Subsets {
		layers := 1 + rng.Intn(g.MaxLayers)
		in := len(subset)
		for l := 0; l < layers; l++ {
			out := 1 + rng.Intn(g.MaxNodes)
			w := mat.NewDense(in+1, out, nil)
			for i := 0; i < in+1; i++ {
				for j := 0; j < out; j++ {
					w.Set(i, j, g.drawWeight(rng))
				}
			}
			if err := genome.AppendLayer(s, w); err != nil {
				return nil, err
			}
			in = out
		}
	}
	return genome, nil
}

// GenerateBatch draws an initial population of n genomes.
func (g ModularGenerator) GenerateBatch(rng *rand.Rand, n int) ([]core.Genome, error) {
	out := make([]core.Genome, 0, n)
	for i := 0; i < n; i++ {
		genome, err := g.Generate(rng)
		if err != nil {
			return nil, err
		}
		out = append(out, genome)
	}
	return out, nil
}

func (g ModularGenerator) drawWeight(rng *rand.Rand) float64 {
	if g.ProbOmit > 0 && rng.Float64() < g.ProbOmit {
		return 0
	}
	return g.WLow + rng.Float64()*(g.WHigh-g.WLow)
}

// RandomFeatureSubsets draws one random feature subset per subnetwork, then
// patches the result so that every feature index appears in at least one
// subset. The subsets are fixed at problem setup and immutable afterwards.
func RandomFeatureSubsets(rng *rand.Rand, numFeatures, numSubnets int) (core.FeatureSubsets, error) {
	if numFeatures < 1 || numSubnets < 1 {
		return nil, errors.New(errors.InvalidConfig, "feature subsets require positive feature and subnet counts")
	}
	subsets := make([][]int, numSubnets)
	for s := range subsets {
		n := 1 + rng.Intn(numFeatures)
		subsets[s] = append([]int(nil), rng.Perm(numFeatures)[:n]...)
	}
	// Ensure every feature is consumed by at least one subnetwork.
	for f := 0; f < numFeatures; f++ {
		used := false
		for _, subset := range subsets {
			for _, v := range subset {
				if v == f {
					used = true
					break
				}
			}
			if used {
				break
			}
		}
		if !used {
			s := rng.Intn(numSubnets)
			subsets[s] = append(subsets[s], f)
		}
	}
	return core.NewFeatureSubsets(subsets, numFeatures)
}
