package surrogate

import (
	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/core"
	"github.com/evoforge/evonn-go/pkg/errors"
)

// Model is a trained surrogate: a champion genome with its fitted linear
// output layer. It can predict over new data with the same feature width as
// the training set.
type Model struct {
	Genome        core.Genome
	OutputWeights *mat.VecDense
	Predicted     *mat.VecDense // predictions over the training data
	RSS           float64
	Objectives    []float64

	eval *Evaluator
}

// Finalize fits the output layer for the given genome and packages it as a
// reusable model. Typically called on the champion returned by selection.
func (e *Evaluator) Finalize(g core.Genome) (*Model, error) {
	z, complexity, err := e.hidden(g, e.ds.X)
	if err != nil {
		return nil, err
	}
	beta, pred, rss, err := e.solveOutput(z)
	if err != nil {
		return nil, err
	}
	return &Model{
		Genome:        g,
		OutputWeights: beta,
		Predicted:     pred,
		RSS:           rss,
		Objectives:    []float64{e.trainingError(rss), complexity},
		eval:          e,
	}, nil
}

// Predict runs the trained model over a new feature matrix.
func (m *Model) Predict(x *mat.Dense) (*mat.VecDense, error) {
	if m.eval == nil || m.OutputWeights == nil {
		return nil, errors.New(errors.InvalidConfig, "model has no fitted output layer")
	}
	z, _, err := m.eval.hidden(m.Genome, x)
	if err != nil {
		return nil, err
	}
	var pred mat.VecDense
	pred.MulVec(z, m.OutputWeights)
	return &pred, nil
}
