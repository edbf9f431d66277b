package surrogate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/core"
	"github.com/evoforge/evonn-go/pkg/errors"
)

// Config selects the evaluation functions for one optimization run.
type Config struct {
	Activation Activation
	Loss       Loss
}

// Evaluator turns a candidate model structure into a pair of objectives
// (training error, structural complexity) by running a forward computation
// through the genome, solving a linear least-squares output layer and
// measuring the residual. It implements core.Evaluator and
// core.CriterionScorer.
type Evaluator struct {
	ds      *core.Dataset
	subsets core.FeatureSubsets
	act     func(float64) float64
	cfg     Config
}

// Option configures optional evaluator behavior.
type Option func(*Evaluator)

// WithFeatureSubsets supplies the per-subnet feature subsets required to
// evaluate modular genomes. The subsets are fixed for the run.
func WithFeatureSubsets(subsets core.FeatureSubsets) Option {
	return func(e *Evaluator) {
		e.subsets = subsets
	}
}

// NewEvaluator builds an evaluator over a fixed dataset.
func NewEvaluator(ds *core.Dataset, cfg Config, opts ...Option) (*Evaluator, error) {
	if ds == nil {
		return nil, errors.New(errors.InvalidConfig, "evaluator requires a dataset")
	}
	act, err := cfg.Activation.Func()
	if err != nil {
		return nil, err
	}
	if !cfg.Loss.Valid() {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "unknown loss function"),
			errors.Fields{"loss": string(cfg.Loss)},
		)
	}
	e := &Evaluator{ds: ds, act: act, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.subsets != nil {
		for _, subset := range e.subsets {
			for _, f := range subset {
				if f >= ds.Features() {
					return nil, errors.WithFields(
						errors.New(errors.InvalidConfig, "feature subset exceeds dataset width"),
						errors.Fields{"feature": f, "features": ds.Features()},
					)
				}
			}
		}
	}
	return e, nil
}

// NumObjectives reports the (training error, complexity) pair length.
func (e *Evaluator) NumObjectives() int { return 2 }

// Evaluate computes the objective vector for the genome. Evaluation is a pure
// function of (genome, dataset, configuration).
func (e *Evaluator) Evaluate(g core.Genome) ([]float64, error) {
	z, complexity, err := e.hidden(g, e.ds.X)
	if err != nil {
		return nil, err
	}
	_, _, rss, err := e.solveOutput(z)
	if err != nil {
		return nil, err
	}
	return []float64{e.trainingError(rss), complexity}, nil
}

// InformationCriterion recomputes the residual sum of squares and the
// effective parameter count k for the genome and returns the small-sample
// corrected Akaike criterion AICc = AIC + 2k(k+1)/(n-k-1) with
// AIC = 2k + n*ln(RSS/n). The criterion is undefined when n-k-1 <= 0.
func (e *Evaluator) InformationCriterion(g core.Genome) (float64, error) {
	z, _, err := e.hidden(g, e.ds.X)
	if err != nil {
		return 0, err
	}
	beta, _, rss, err := e.solveOutput(z)
	if err != nil {
		return 0, err
	}
	k := effectiveParams(g) + countNonZeroVec(beta)
	return akaikeCorrected(rss, e.ds.Samples(), k)
}

func akaikeCorrected(rss float64, n, k int) (float64, error) {
	if n-k-1 <= 0 {
		return 0, errors.WithFields(
			errors.New(errors.DegenerateModel, "information criterion undefined: model too complex for sample size"),
			errors.Fields{"k": k, "n": n},
		)
	}
	kf := float64(k)
	nf := float64(n)
	aic := 2*kf + nf*math.Log(rss/nf)
	return aic + 2*kf*(kf+1)/(nf-kf-1), nil
}

// trainingError maps the residual sum of squares to the configured loss.
func (e *Evaluator) trainingError(rss float64) float64 {
	mse := rss / float64(e.ds.Samples())
	if e.cfg.Loss == MSE {
		return mse
	}
	return math.Sqrt(mse)
}

// hidden runs the forward computation for either encoding over the given
// feature matrix and returns the combined hidden representation along with
// the structural complexity objective.
func (e *Evaluator) hidden(g core.Genome, x *mat.Dense) (*mat.Dense, float64, error) {
	switch genome := g.(type) {
	case *core.FlatGenome:
		z, err := e.flatHidden(genome, x)
		if err != nil {
			return nil, 0, err
		}
		return z, flatComplexity(genome), nil
	case *core.ModularGenome:
		return e.modularHidden(genome, x)
	default:
		return nil, 0, errors.New(errors.InvalidInput, "unsupported genome encoding")
	}
}

// flatHidden computes act(X*W[1:,:] + W[0,:]).
func (e *Evaluator) flatHidden(g *core.FlatGenome, x *mat.Dense) (*mat.Dense, error) {
	_, features := x.Dims()
	rows, cols := g.W.Dims()
	if rows-1 != features {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "genome width does not match dataset features"),
			errors.Fields{"genome_features": rows - 1, "dataset_features": features},
		)
	}
	var z mat.Dense
	z.Mul(x, g.W.Slice(1, rows, 0, cols))
	w := g.W
	act := e.act
	z.Apply(func(_, j int, v float64) float64 {
		return act(v + w.At(0, j))
	}, &z)
	return &z, nil
}

// modularHidden evaluates each subnetwork over its fixed feature subset and
// concatenates the resulting output blocks column-wise. A subnetwork's
// complexity accumulates as the running product, across its layers, of the
// absolute non-bias weight matrices; the total is the sum over subnetworks of
// the summed product entries.
func (e *Evaluator) modularHidden(g *core.ModularGenome, x *mat.Dense) (*mat.Dense, float64, error) {
	if e.subsets == nil {
		return nil, 0, errors.New(errors.InvalidConfig, "modular genomes require feature subsets")
	}
	if g.NumSubnets() != len(e.subsets) {
		return nil, 0, errors.WithFields(
			errors.New(errors.InvalidInput, "genome subnet count does not match feature subsets"),
			errors.Fields{"genome_subnets": g.NumSubnets(), "subsets": len(e.subsets)},
		)
	}

	samples, _ := x.Dims()
	var (
		blocks     []*mat.Dense
		totalCols  int
		complexity float64
	)
	for s, subset := range e.subsets {
		layers := g.SubnetLayers(s)
		if len(layers) == 0 {
			// Collapsed subnetwork: contributes no output columns.
			continue
		}
		in := sliceColumns(x, subset)
		var cum *mat.Dense
		for li := range layers {
			layer := &layers[li]
			_, width := in.Dims()
			if layer.InputNodes() != width {
				return nil, 0, errors.WithFields(
					errors.New(errors.InvalidInput, "layer input width does not match previous layer"),
					errors.Fields{"subnet": s, "layer": layer.Index, "expected": width, "got": layer.InputNodes()},
				)
			}
			w := layer.Matrix()
			var out mat.Dense
			out.Mul(in, w.Slice(1, layer.Rows, 0, layer.Cols))
			act := e.act
			out.Apply(func(_, j int, v float64) float64 {
				return act(v + w.At(0, j))
			}, &out)

			absW := mat.NewDense(layer.Rows-1, layer.Cols, nil)
			absW.Apply(func(_, _ int, v float64) float64 {
				return math.Abs(v)
			}, w.Slice(1, layer.Rows, 0, layer.Cols))
			if cum == nil {
				cum = absW
			} else {
				var next mat.Dense
				next.Mul(cum, absW)
				cum = &next
			}
			in = &out
		}
		complexity += mat.Sum(cum)
		blocks = append(blocks, in)
		_, c := in.Dims()
		totalCols += c
	}

	if totalCols == 0 {
		return nil, 0, errors.New(errors.Numerical, "hidden representation has zero columns")
	}
	z := mat.NewDense(samples, totalCols, nil)
	col := 0
	for _, block := range blocks {
		_, c := block.Dims()
		for i := 0; i < samples; i++ {
			for j := 0; j < c; j++ {
				z.Set(i, col+j, block.At(i, j))
			}
		}
		col += c
	}
	return z, complexity, nil
}

// solveOutput fits the linear output layer argmin ||Z*beta - y||^2 and
// returns the weights, predictions and residual sum of squares. A singular or
// empty representation fails with a Numerical error.
func (e *Evaluator) solveOutput(z *mat.Dense) (*mat.VecDense, *mat.VecDense, float64, error) {
	_, cols := z.Dims()
	if cols == 0 {
		return nil, nil, 0, errors.New(errors.Numerical, "hidden representation has zero columns")
	}
	var beta mat.VecDense
	if err := beta.SolveVec(z, e.ds.Y); err != nil {
		return nil, nil, 0, errors.Wrap(err, errors.Numerical, "least squares solve failed")
	}
	var pred mat.VecDense
	pred.MulVec(z, &beta)
	rss := 0.0
	for i := 0; i < e.ds.Samples(); i++ {
		r := e.ds.Y.AtVec(i) - pred.AtVec(i)
		rss += r * r
	}
	if math.IsNaN(rss) || math.IsInf(rss, 0) {
		return nil, nil, 0, errors.New(errors.Numerical, "least squares residual is not finite")
	}
	return &beta, &pred, rss, nil
}

// sliceColumns copies the requested dataset columns into a new matrix.
func sliceColumns(x *mat.Dense, cols []int) *mat.Dense {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, len(cols), nil)
	for j, c := range cols {
		for i := 0; i < rows; i++ {
			out.Set(i, j, x.At(i, c))
		}
	}
	return out
}

// flatComplexity counts nonzero entries in the non-bias weight rows.
func flatComplexity(g *core.FlatGenome) float64 {
	rows, cols := g.W.Dims()
	k := 0
	for i := 1; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if g.W.At(i, j) != 0 {
				k++
			}
		}
	}
	return float64(k)
}

// effectiveParams counts nonzero hidden-layer weights, excluding bias rows.
func effectiveParams(g core.Genome) int {
	switch genome := g.(type) {
	case *core.FlatGenome:
		return int(flatComplexity(genome))
	case *core.ModularGenome:
		k := 0
		for _, layer := range genome.Layers() {
			for i := 1; i < layer.Rows; i++ {
				for j := 0; j < layer.Cols; j++ {
					if layer.W[i*layer.Cols+j] != 0 {
						k++
					}
				}
			}
		}
		return k
	default:
		return 0
	}
}

func countNonZeroVec(v *mat.VecDense) int {
	k := 0
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) != 0 {
			k++
		}
	}
	return k
}
