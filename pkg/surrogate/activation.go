package surrogate

import (
	"math"

	"github.com/evoforge/evonn-go/pkg/errors"
)

// Activation names the hidden-layer activation function.
type Activation string

const (
	Sigmoid Activation = "sigmoid"
	ReLU    Activation = "relu"
	Tanh    Activation = "tanh"
)

// Func resolves the activation to its scalar function.
func (a Activation) Func() (func(float64) float64, error) {
	switch a {
	case Sigmoid:
		return func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }, nil
	case ReLU:
		return func(x float64) float64 { return math.Max(x, 0) }, nil
	case Tanh:
		return math.Tanh, nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "unknown activation function"),
			errors.Fields{"activation": string(a)},
		)
	}
}

// Loss names the training-error objective.
type Loss string

const (
	RMSE Loss = "rmse"
	MSE  Loss = "mse"
)

// Valid reports whether the loss is one of the supported functions.
func (l Loss) Valid() bool {
	return l == RMSE || l == MSE
}
