package recombination

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/core"
)

func flatFromValue(t *testing.T, rows, cols int, v float64) *core.FlatGenome {
	t.Helper()
	w := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w.Set(i, j, v)
		}
	}
	g, err := core.NewFlatGenome(w)
	require.NoError(t, err)
	return g
}

func TestNodeCrossoverSwapsWholeColumns(t *testing.T) {
	a := flatFromValue(t, 3, 4, 1)
	b := flatFromValue(t, 3, 4, 2)

	cross := NodeCrossover(1.0) // always swap
	offspring := cross([]core.Genome{a, b}, nil, rand.New(rand.NewSource(1)))
	require.Len(t, offspring, 2)

	ca := offspring[0].(*core.FlatGenome)
	cb := offspring[1].(*core.FlatGenome)
	rows, cols := ca.W.Dims()
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			assert.Equal(t, 2.0, ca.W.At(i, j))
			assert.Equal(t, 1.0, cb.W.At(i, j))
		}
	}

	// Parents are untouched.
	assert.Equal(t, 1.0, a.W.At(0, 0))
	assert.Equal(t, 2.0, b.W.At(0, 0))
}

func TestNodeCrossoverZeroProbabilityCopies(t *testing.T) {
	a := flatFromValue(t, 2, 2, 1)
	b := flatFromValue(t, 2, 2, 2)

	cross := NodeCrossover(0.0)
	offspring := cross([]core.Genome{a, b}, nil, rand.New(rand.NewSource(1)))
	require.Len(t, offspring, 2)
	assert.Equal(t, 1.0, offspring[0].(*core.FlatGenome).W.At(0, 0))
	assert.Equal(t, 2.0, offspring[1].(*core.FlatGenome).W.At(0, 0))
}

func TestNodeCrossoverOddPoolDropsLast(t *testing.T) {
	pool := []core.Genome{
		flatFromValue(t, 2, 2, 1),
		flatFromValue(t, 2, 2, 2),
		flatFromValue(t, 2, 2, 3),
	}
	offspring := NodeCrossover(0.5)(pool, nil, rand.New(rand.NewSource(1)))
	assert.Len(t, offspring, 2)
}

func TestGaussianMutationRespectsLimits(t *testing.T) {
	g := flatFromValue(t, 4, 4, 0)
	mutate := GaussianMutation(1.0, 100) // huge noise, always mutate
	mutate([]core.Genome{g}, nil, rand.New(rand.NewSource(1)), -5, 5)

	rows, cols := g.W.Dims()
	changed := false
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := g.W.At(i, j)
			assert.GreaterOrEqual(t, v, -5.0)
			assert.LessOrEqual(t, v, 5.0)
			if v != 0 {
				changed = true
			}
		}
	}
	assert.True(t, changed)
}

func TestGaussianMutationZeroProbabilityIsNoOp(t *testing.T) {
	g := flatFromValue(t, 3, 3, 1)
	GaussianMutation(0.0, 1)([]core.Genome{g}, nil, rand.New(rand.NewSource(1)), -5, 5)

	rows, cols := g.W.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(t, 1.0, g.W.At(i, j))
		}
	}
}

func TestBoundedPolynomialMutationStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	mutate := BoundedPolynomialMutation(1.0, 20)

	for trial := 0; trial < 20; trial++ {
		g := flatFromValue(t, 5, 5, rng.Float64()*10-5)
		mutate([]core.Genome{g}, nil, rng, -5, 5)

		rows, cols := g.W.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := g.W.At(i, j)
				assert.GreaterOrEqual(t, v, -5.0)
				assert.LessOrEqual(t, v, 5.0)
			}
		}
	}
}

func TestBoundedPolynomialMutationDegenerateSpan(t *testing.T) {
	g := flatFromValue(t, 2, 2, 1)
	// lower >= upper: the operator must leave the genome alone.
	BoundedPolynomialMutation(1.0, 20)([]core.Genome{g}, nil, rand.New(rand.NewSource(1)), 5, 5)
	assert.Equal(t, 1.0, g.W.At(0, 0))
}

func modularFromValue(t *testing.T, v float64) *core.ModularGenome {
	t.Helper()
	g, err := core.NewModularGenome(2)
	require.NoError(t, err)
	fill := func(rows, cols int) *mat.Dense {
		m := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				m.Set(i, j, v)
			}
		}
		return m
	}
	require.NoError(t, g.AppendLayer(0, fill(3, 2)))
	require.NoError(t, g.AppendLayer(0, fill(3, 1)))
	require.NoError(t, g.AppendLayer(1, fill(2, 2)))
	return g
}

func TestSubnetCrossoverGaussianInheritsWholeSubnets(t *testing.T) {
	a := modularFromValue(t, 1)
	b := modularFromValue(t, 2)

	// stddev 0 disables the mutation half, isolating inheritance.
	mate := SubnetCrossoverGaussian(1.0, 0)
	offspring := mate([]core.Genome{a, b}, nil, rand.New(rand.NewSource(2)))
	require.Len(t, offspring, 1)

	child := offspring[0].(*core.ModularGenome)
	require.Equal(t, 2, child.NumSubnets())
	for s := 0; s < 2; s++ {
		layers := child.SubnetLayers(s)
		require.NotEmpty(t, layers)
		donor := layers[0].W[0]
		assert.Contains(t, []float64{1, 2}, donor)
		// Every layer of a subnet comes from the same parent.
		for _, layer := range layers {
			for _, w := range layer.W {
				assert.Equal(t, donor, w)
			}
		}
	}

	// Parents are untouched.
	assert.Equal(t, 1.0, a.Layers()[0].W[0])
	assert.Equal(t, 2.0, b.Layers()[0].W[0])
}

func TestSubnetCrossoverGaussianMutates(t *testing.T) {
	a := modularFromValue(t, 1)
	b := modularFromValue(t, 1)

	mate := SubnetCrossoverGaussian(1.0, 0.5)
	offspring := mate([]core.Genome{a, b}, nil, rand.New(rand.NewSource(3)))
	require.Len(t, offspring, 1)

	child := offspring[0].(*core.ModularGenome)
	changed := false
	for _, layer := range child.Layers() {
		for _, w := range layer.W {
			if w != 1.0 {
				changed = true
			}
		}
	}
	assert.True(t, changed)
}

func TestSubnetCrossoverGaussianSkipsMismatchedPairs(t *testing.T) {
	a := modularFromValue(t, 1)
	single, err := core.NewModularGenome(1)
	require.NoError(t, err)
	require.NoError(t, single.AppendLayer(0, mat.NewDense(2, 1, []float64{0, 1})))

	offspring := SubnetCrossoverGaussian(0.5, 0.5)(
		[]core.Genome{a, single}, nil, rand.New(rand.NewSource(1)))
	assert.Empty(t, offspring)
}
