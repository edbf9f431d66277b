package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/errors"
)

func TestFlatGenome(t *testing.T) {
	w := mat.NewDense(4, 3, nil)
	g, err := NewFlatGenome(w)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Features())
	assert.Equal(t, 3, g.HiddenNodes())

	_, err = NewFlatGenome(nil)
	require.Error(t, err)

	_, err = NewFlatGenome(mat.NewDense(1, 3, nil))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestFlatGenomeCloneIsDeep(t *testing.T) {
	w := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	g, err := NewFlatGenome(w)
	require.NoError(t, err)

	clone := g.Clone().(*FlatGenome)
	clone.W.Set(0, 0, 99)

	assert.Equal(t, 1.0, g.W.At(0, 0))
	assert.Equal(t, 99.0, clone.W.At(0, 0))
}

func TestModularGenomeAppendLayer(t *testing.T) {
	g, err := NewModularGenome(2)
	require.NoError(t, err)

	require.NoError(t, g.AppendLayer(0, mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})))
	require.NoError(t, g.AppendLayer(0, mat.NewDense(3, 1, []float64{7, 8, 9})))
	require.NoError(t, g.AppendLayer(1, mat.NewDense(2, 2, []float64{1, 1, 2, 2})))

	assert.Equal(t, 2, g.NumSubnets())
	assert.Equal(t, 2, g.NumLayers(0))
	assert.Equal(t, 1, g.NumLayers(1))

	// Going back to an earlier subnet breaks arena grouping.
	err = g.AppendLayer(0, mat.NewDense(2, 2, nil))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))

	layers := g.SubnetLayers(0)
	require.Len(t, layers, 2)
	assert.Equal(t, 0, layers[0].Index)
	assert.Equal(t, 1, layers[1].Index)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, layers[0].W)

	second := g.SubnetLayers(1)
	require.Len(t, second, 1)
	assert.Equal(t, 0, second[0].Index)
	assert.Equal(t, 1, second[0].InputNodes())
	assert.Equal(t, 2, second[0].OutputNodes())
}

func TestModularGenomeAppendLayerCopiesData(t *testing.T) {
	g, err := NewModularGenome(1)
	require.NoError(t, err)

	src := mat.NewDense(2, 1, []float64{1, 2})
	require.NoError(t, g.AppendLayer(0, src))
	src.Set(0, 0, 42)

	assert.Equal(t, []float64{1, 2}, g.Layers()[0].W)
}

func TestModularGenomeLayerMatrixWritesThrough(t *testing.T) {
	g, err := NewModularGenome(1)
	require.NoError(t, err)
	require.NoError(t, g.AppendLayer(0, mat.NewDense(2, 2, []float64{1, 2, 3, 4})))

	g.LayerAt(0).Matrix().Set(1, 1, -9)
	assert.Equal(t, -9.0, g.Layers()[0].W[3])
}

func TestModularGenomeCloneIsDeep(t *testing.T) {
	g, err := NewModularGenome(1)
	require.NoError(t, err)
	require.NoError(t, g.AppendLayer(0, mat.NewDense(2, 1, []float64{1, 2})))

	clone := g.Clone().(*ModularGenome)
	clone.LayerAt(0).W[0] = 50

	assert.Equal(t, 1.0, g.Layers()[0].W[0])
}

func TestNewModularGenomeFromLayersRoundTrip(t *testing.T) {
	g, err := NewModularGenome(2)
	require.NoError(t, err)
	require.NoError(t, g.AppendLayer(0, mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})))
	require.NoError(t, g.AppendLayer(1, mat.NewDense(2, 1, []float64{7, 8})))

	rebuilt, err := NewModularGenomeFromLayers(2, g.Layers())
	require.NoError(t, err)
	assert.Equal(t, g.NumLayers(0), rebuilt.NumLayers(0))
	assert.Equal(t, g.NumLayers(1), rebuilt.NumLayers(1))
	for i := range g.Layers() {
		assert.Equal(t, g.Layers()[i].W, rebuilt.Layers()[i].W)
	}
}

func TestNewFeatureSubsets(t *testing.T) {
	subsets, err := NewFeatureSubsets([][]int{{0, 2}, {1}, {2}}, 3)
	require.NoError(t, err)
	assert.Len(t, subsets, 3)

	tests := []struct {
		name        string
		subsets     [][]int
		numFeatures int
	}{
		{"empty", nil, 3},
		{"empty subset", [][]int{{0}, {}}, 1},
		{"out of range", [][]int{{0, 3}}, 3},
		{"duplicate", [][]int{{0, 0}, {1}}, 2},
		{"uncovered feature", [][]int{{0}, {1}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeatureSubsets(tt.subsets, tt.numFeatures)
			require.Error(t, err)
			assert.Equal(t, errors.InvalidInput, errors.Code(err))
		})
	}
}

func TestNewFeatureSubsetsCopiesInput(t *testing.T) {
	raw := [][]int{{0, 1}}
	subsets, err := NewFeatureSubsets(raw, 2)
	require.NoError(t, err)

	raw[0][0] = 7
	assert.Equal(t, 0, subsets[0][0])
}
