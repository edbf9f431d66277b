package core

import (
	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/errors"
)

// Dataset holds the fixed training data for one optimization run: a feature
// matrix of shape samples x features and a target vector of length samples.
// Both are treated as immutable, shared-read-only for the lifetime of the run.
type Dataset struct {
	X *mat.Dense
	Y *mat.VecDense
}

// NewDataset validates shapes and wraps the training data.
func NewDataset(x *mat.Dense, y *mat.VecDense) (*Dataset, error) {
	if x == nil || y == nil {
		return nil, errors.New(errors.InvalidInput, "dataset requires both features and targets")
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.New(errors.InvalidInput, "dataset must not be empty")
	}
	if y.Len() != rows {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "feature matrix and target vector disagree on sample count"),
			errors.Fields{"samples": rows, "targets": y.Len()},
		)
	}
	return &Dataset{X: x, Y: y}, nil
}

// Samples returns the number of training samples.
func (d *Dataset) Samples() int {
	r, _ := d.X.Dims()
	return r
}

// Features returns the number of input features.
func (d *Dataset) Features() int {
	_, c := d.X.Dims()
	return c
}
