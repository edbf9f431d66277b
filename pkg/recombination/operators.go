package recombination

import (
	"math"
	"math/rand"

	"github.com/evoforge/evonn-go/pkg/core"
	"github.com/evoforge/evonn-go/pkg/population"
)

// NodeCrossover builds a population.MateFunc for flat genomes: each pair of
// parents from the mating pool produces two offspring by exchanging randomly
// chosen hidden-node columns.
func NodeCrossover(probSwap float64) population.MateFunc {
	return func(matingPool, _ []core.Genome, rng *rand.Rand) []core.Genome {
		var offspring []core.Genome
		for i := 0; i+1 < len(matingPool); i += 2 {
			a, okA := matingPool[i].(*core.FlatGenome)
			b, okB := matingPool[i+1].(*core.FlatGenome)
			if !okA || !okB {
				continue
			}
			ca := a.Clone().(*core.FlatGenome)
			cb := b.Clone().(*core.FlatGenome)
			rows, cols := ca.W.Dims()
			bRows, bCols := cb.W.Dims()
			if rows == bRows {
				for j := 0; j < cols && j < bCols; j++ {
					if rng.Float64() >= probSwap {
						continue
					}
					for r := 0; r < rows; r++ {
						va, vb := ca.W.At(r, j), cb.W.At(r, j)
						ca.W.Set(r, j, vb)
						cb.W.Set(r, j, va)
					}
				}
			}
			offspring = append(offspring, ca, cb)
		}
		return offspring
	}
}

// GaussianMutation builds a population.MutateFunc for flat genomes: each
// weight is perturbed with probability probMut by zero-mean gaussian noise
// scaled by stddev, then clipped to the weight limits.
func GaussianMutation(probMut, stddev float64) population.MutateFunc {
	return func(offspring, _ []core.Genome, rng *rand.Rand, lower, upper float64) {
		for _, g := range offspring {
			flat, ok := g.(*core.FlatGenome)
			if !ok {
				continue
			}
			rows, cols := flat.W.Dims()
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					if rng.Float64() >= probMut {
						continue
					}
					v := flat.W.At(i, j) + rng.NormFloat64()*stddev
					flat.W.Set(i, j, clip(v, lower, upper))
				}
			}
		}
	}
}

// SubnetCrossoverGaussian builds a combined crossover+mutation operator for
// modular genomes: offspring inherit each subnetwork wholesale from one of
// two parents, then every weight is perturbed with probability probMut by
// gaussian noise scaled by stddev.
func SubnetCrossoverGaussian(probMut, stddev float64) population.MateFunc {
	return func(matingPool, _ []core.Genome, rng *rand.Rand) []core.Genome {
		var offspring []core.Genome
		for i := 0; i+1 < len(matingPool); i += 2 {
			a, okA := matingPool[i].(*core.ModularGenome)
			b, okB := matingPool[i+1].(*core.ModularGenome)
			if !okA || !okB || a.NumSubnets() != b.NumSubnets() {
				continue
			}
			child, err := crossSubnets(a, b, rng)
			if err != nil {
				continue
			}
			mutateModular(child, rng, probMut, stddev)
			offspring = append(offspring, child)
		}
		return offspring
	}
}

func crossSubnets(a, b *core.ModularGenome, rng *rand.Rand) (*core.ModularGenome, error) {
	child, err := core.NewModularGenome(a.NumSubnets())
	if err != nil {
		return nil, err
	}
	for s := 0; s < a.NumSubnets(); s++ {
		donor := a
		if rng.Float64() < 0.5 {
			donor = b
		}
		for _, layer := range donor.SubnetLayers(s) {
			w := append([]float64(nil), layer.W...)
			copied := core.Layer{Subnet: s, Rows: layer.Rows, Cols: layer.Cols, W: w}
			if err := child.AppendLayer(s, copied.Matrix()); err != nil {
				return nil, err
			}
		}
	}
	return child, nil
}

func mutateModular(g *core.ModularGenome, rng *rand.Rand, probMut, stddev float64) {
	for i := range g.Layers() {
		layer := g.LayerAt(i)
		for k := range layer.W {
			if rng.Float64() < probMut {
				layer.W[k] += rng.NormFloat64() * stddev
			}
		}
	}
}

// BoundedPolynomialMutation builds a population.MutateFunc implementing
// polynomial mutation with distribution index disMut, bounded by the weight
// limits. Weights mutate with probability probMut.
func BoundedPolynomialMutation(probMut float64, disMut float64) population.MutateFunc {
	return func(offspring, _ []core.Genome, rng *rand.Rand, lower, upper float64) {
		span := upper - lower
		if span <= 0 {
			return
		}
		for _, g := range offspring {
			flat, ok := g.(*core.FlatGenome)
			if !ok {
				continue
			}
			rows, cols := flat.W.Dims()
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					if rng.Float64() > probMut {
						continue
					}
					v := flat.W.At(i, j)
					scaled := (v - lower) / span
					miu := rng.Float64()
					var delta float64
					if miu < 0.5 {
						delta = math.Pow(2*miu+(1-2*miu)*math.Pow(1-scaled, disMut+1), 1/(disMut+1)) - 1
					} else {
						delta = 1 - math.Pow(2*(1-miu)+2*(miu-0.5)*math.Pow(scaled, disMut+1), 1/(disMut+1))
					}
					flat.W.Set(i, j, clip(v+span*delta, lower, upper))
				}
			}
		}
	}
}

func clip(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
