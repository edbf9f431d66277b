package core

// ObjectiveSense declares the optimization direction of one objective.
// Fitness values are objectives signed for minimization: a minimized
// objective keeps its sign, a maximized one is negated.
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

// Sign returns the multiplier applied to the raw objective to obtain fitness.
func (s ObjectiveSense) Sign() float64 {
	if s == Maximize {
		return -1
	}
	return 1
}

// Evaluator scores a genome against the fixed training dataset. Evaluation is
// a pure function of (genome, dataset, configuration); it performs no random
// sampling, so repeated calls yield bit-identical objective vectors.
type Evaluator interface {
	// Evaluate returns the objective vector for the genome. Failures such
	// as a degenerate linear solve are reported as errors with the
	// Numerical code; callers decide whether to absorb them.
	Evaluate(g Genome) ([]float64, error)

	// NumObjectives reports the fixed objective vector length.
	NumObjectives() int
}

// ConstraintEvaluator is implemented by evaluators whose problems carry
// inequality constraints. The returned row holds one violation value per
// constraint.
type ConstraintEvaluator interface {
	Constraints(g Genome, objectives []float64) []float64
	NumConstraints() int
}

// CriterionScorer ranks a genome by a corrected information criterion
// (AICc). It is consumed by the model selector.
type CriterionScorer interface {
	InformationCriterion(g Genome) (float64, error)
}
