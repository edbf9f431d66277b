package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/errors"
)

func TestNewDataset(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	y := mat.NewVecDense(3, []float64{1, 2, 3})

	ds, err := NewDataset(x, y)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Samples())
	assert.Equal(t, 2, ds.Features())
}

func TestNewDatasetValidation(t *testing.T) {
	x := mat.NewDense(3, 2, nil)

	tests := []struct {
		name string
		x    *mat.Dense
		y    *mat.VecDense
	}{
		{"nil features", nil, mat.NewVecDense(3, nil)},
		{"nil targets", x, nil},
		{"sample count mismatch", x, mat.NewVecDense(4, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataset(tt.x, tt.y)
			require.Error(t, err)
			assert.Equal(t, errors.InvalidInput, errors.Code(err))
		})
	}
}
