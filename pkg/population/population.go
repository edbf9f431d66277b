package population

import (
	"context"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/evoforge/evonn-go/pkg/core"
	"github.com/evoforge/evonn-go/pkg/errors"
	"github.com/evoforge/evonn-go/pkg/logging"
)

// State tracks the population lifecycle.
type State int

const (
	StateEmpty State = iota
	StateSeeded
	StateEvolving
	StateEvaluated
	StateTerminated
)

func (s State) String() string {
	return [...]string{"EMPTY", "SEEDED", "EVOLVING", "EVALUATED", "TERMINATED"}[s]
}

// RemoveMode selects whether Remove drops the given indices or their
// complement.
type RemoveMode int

const (
	// Delete drops the given indices and keeps the rest.
	Delete RemoveMode = iota
	// Keep retains the given indices and drops the rest.
	Keep
)

// Strategy is the pluggable per-generation hook driven by Evolve. The
// strategy realizes its recombination by calling back into Add, Remove and
// Mate. Returning done = true terminates the evolution early.
type Strategy interface {
	Generation(ctx context.Context, pop *Population) (done bool, err error)
}

// Config carries the population construction parameters.
type Config struct {
	// Senses gives the optimization direction per objective. Empty means
	// minimize everything.
	Senses []core.ObjectiveSense

	// LowerLimit and UpperLimit bound the weight values; they are handed
	// to mutation operators.
	LowerLimit float64
	UpperLimit float64

	// Parallelism caps concurrent candidate evaluations inside Add.
	// Values below two evaluate sequentially. Insertion and ideal/nadir
	// updates always happen sequentially in candidate order.
	Parallelism int

	// FatalEvalErrors aborts Add on the first evaluation failure instead of
	// absorbing it with sentinel worst-case objectives.
	FatalEvalErrors bool
}

// Population owns an ordered list of genomes paired row-for-row with an
// objectives matrix, a fitness matrix (objectives signed for minimization)
// and a constraint-violation matrix. Insertion order is the canonical
// ordering; indices are the only identity. A population must not be mutated
// from multiple goroutines.
type Population struct {
	id          string
	evaluator   core.Evaluator
	constraints core.ConstraintEvaluator
	recomb      Recombination
	rng         *rand.Rand
	logger      *logging.Logger
	cfg         Config

	genomes    []core.Genome
	objectives [][]float64
	fitness    [][]float64
	violations [][]float64
	ideal      []float64
	worst      []float64

	state      State
	generation int
}

// Option configures optional population collaborators.
type Option func(*Population)

// WithRecombination fixes the recombination variant at construction.
func WithRecombination(r Recombination) Option {
	return func(p *Population) { p.recomb = r }
}

// WithConstraints attaches a constraint evaluator.
func WithConstraints(ce core.ConstraintEvaluator) Option {
	return func(p *Population) { p.constraints = ce }
}

// WithRNG supplies the pseudo-random source used by Mate. The same seed and
// inputs reproduce the same population trajectory.
func WithRNG(rng *rand.Rand) Option {
	return func(p *Population) { p.rng = rng }
}

// WithLogger overrides the global logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Population) { p.logger = l }
}

// New creates an empty population bound to an evaluator.
func New(evaluator core.Evaluator, cfg Config, opts ...Option) (*Population, error) {
	if evaluator == nil {
		return nil, errors.New(errors.InvalidConfig, "population requires an evaluator")
	}
	numObj := evaluator.NumObjectives()
	if numObj < 1 {
		return nil, errors.New(errors.InvalidConfig, "evaluator must report at least one objective")
	}
	if len(cfg.Senses) == 0 {
		cfg.Senses = make([]core.ObjectiveSense, numObj)
	}
	if len(cfg.Senses) != numObj {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "objective senses do not match objective count"),
			errors.Fields{"senses": len(cfg.Senses), "objectives": numObj},
		)
	}

	p := &Population{
		id:        uuid.NewString(),
		evaluator: evaluator,
		cfg:       cfg,
		ideal:     make([]float64, numObj),
		worst:     make([]float64, numObj),
		state:     StateEmpty,
	}
	for j := range p.ideal {
		p.ideal[j] = math.Inf(1)
		p.worst[j] = math.Inf(-1)
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.GetLogger()
	}
	return p, nil
}

// ID returns the population's run identifier.
func (p *Population) ID() string { return p.id }

// Len returns the number of individuals.
func (p *Population) Len() int { return len(p.genomes) }

// NumObjectives returns the objective vector length.
func (p *Population) NumObjectives() int { return p.evaluator.NumObjectives() }

// State returns the lifecycle state.
func (p *Population) State() State { return p.state }

// Generation returns the generation counter.
func (p *Population) Generation() int { return p.generation }

// Genome returns the individual at index i.
func (p *Population) Genome(i int) core.Genome { return p.genomes[i] }

// Genomes returns the ordered genome list. The slice is shared with the
// population and must not be mutated.
func (p *Population) Genomes() []core.Genome { return p.genomes }

// Objectives returns the objectives matrix, row-aligned with the genomes.
// The rows are shared with the population and must not be mutated.
func (p *Population) Objectives() [][]float64 { return p.objectives }

// Fitness returns the fitness matrix (objectives signed for minimization).
func (p *Population) Fitness() [][]float64 { return p.fitness }

// Violations returns the constraint-violation matrix, possibly empty.
func (p *Population) Violations() [][]float64 { return p.violations }

// IdealFitness returns the per-objective running minimum over every fitness
// row ever added.
func (p *Population) IdealFitness() []float64 { return append([]float64(nil), p.ideal...) }

// WorstFitness returns the per-objective running maximum over every fitness
// row ever added.
func (p *Population) WorstFitness() []float64 { return append([]float64(nil), p.worst...) }

type evalResult struct {
	objectives []float64
	err        error
}

// Add evaluates the candidates and appends them to the population in input
// order, stacking their objective, fitness and constraint rows and updating
// the ideal and nadir points with each new fitness row. A candidate whose
// evaluation fails receives sentinel worst-case objectives and is still
// inserted, unless FatalEvalErrors is set. Candidate evaluation may run in
// parallel; insertion is always sequential in input order.
func (p *Population) Add(ctx context.Context, candidates []core.Genome) error {
	if err := errors.CheckContext(ctx, "add"); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	results := make([]evalResult, len(candidates))
	if p.cfg.Parallelism > 1 {
		pl := pool.New().WithMaxGoroutines(p.cfg.Parallelism)
		for i, candidate := range candidates {
			i, candidate := i, candidate
			pl.Go(func() {
				obj, err := p.evaluator.Evaluate(candidate)
				results[i] = evalResult{objectives: obj, err: err}
			})
		}
		pl.Wait()
	} else {
		for i, candidate := range candidates {
			obj, err := p.evaluator.Evaluate(candidate)
			results[i] = evalResult{objectives: obj, err: err}
		}
	}

	for i, candidate := range candidates {
		res := results[i]
		obj := res.objectives
		if res.err != nil {
			if p.cfg.FatalEvalErrors {
				return errors.WithFields(res.err, errors.Fields{
					"candidate":  i,
					"generation": p.generation,
				})
			}
			p.logger.Warn(ctx, "candidate evaluation failed, inserting with sentinel objectives: %v", res.err)
			obj = p.sentinelObjectives()
		}
		p.appendRow(candidate, obj)
	}

	if p.state == StateEmpty {
		p.state = StateSeeded
	}
	return nil
}

// sentinelObjectives builds the worst possible objective vector: +Inf for
// minimized objectives, -Inf for maximized ones.
func (p *Population) sentinelObjectives() []float64 {
	obj := make([]float64, p.NumObjectives())
	for j, sense := range p.cfg.Senses {
		obj[j] = math.Inf(1) * sense.Sign()
	}
	return obj
}

func (p *Population) appendRow(g core.Genome, obj []float64) {
	fit := make([]float64, len(obj))
	for j, sense := range p.cfg.Senses {
		fit[j] = obj[j] * sense.Sign()
	}

	p.genomes = append(p.genomes, g)
	p.objectives = append(p.objectives, obj)
	p.fitness = append(p.fitness, fit)
	if p.constraints != nil {
		p.violations = append(p.violations, p.constraints.Constraints(g, obj))
	}

	for j, v := range fit {
		p.ideal[j] = math.Min(p.ideal[j], v)
		p.worst[j] = math.Max(p.worst[j], v)
	}
}

// Remove drops individuals by index. Delete drops the given indices and
// keeps everything else; Keep is the complement. Relative order of survivors
// is preserved. The ideal and nadir points are NOT recomputed: if the removed
// individuals defined the current bounds the caller must call
// RefreshIdealAndNadir.
func (p *Population) Remove(indices []int, mode RemoveMode) error {
	mask := make([]bool, len(p.genomes))
	for _, idx := range indices {
		if idx < 0 || idx >= len(p.genomes) {
			return errors.WithFields(
				errors.New(errors.InvalidIndex, "population index out of range"),
				errors.Fields{"index": idx, "size": len(p.genomes)},
			)
		}
		mask[idx] = true
	}

	keepMarked := mode == Keep
	var (
		genomes    []core.Genome
		objectives [][]float64
		fitness    [][]float64
		violations [][]float64
	)
	for i, marked := range mask {
		if marked != keepMarked {
			continue
		}
		genomes = append(genomes, p.genomes[i])
		objectives = append(objectives, p.objectives[i])
		fitness = append(fitness, p.fitness[i])
		if len(p.violations) > 0 {
			violations = append(violations, p.violations[i])
		}
	}
	p.genomes = genomes
	p.objectives = objectives
	p.fitness = fitness
	p.violations = violations
	return nil
}

// RefreshIdealAndNadir recomputes the ideal and nadir points from scratch
// over the current fitness rows, discarding history. Intended after Remove
// when the dropped individuals may have defined the bounds.
func (p *Population) RefreshIdealAndNadir() {
	for j := range p.ideal {
		p.ideal[j] = math.Inf(1)
		p.worst[j] = math.Inf(-1)
	}
	for _, row := range p.fitness {
		for j, v := range row {
			p.ideal[j] = math.Min(p.ideal[j], v)
			p.worst[j] = math.Max(p.worst[j], v)
		}
	}
}

// Evolve drives the evolutionary loop: it invokes the strategy's
// per-generation hook up to generations times, or until the strategy signals
// early termination. Each generation transitions EVOLVING -> EVALUATED; the
// final state is TERMINATED.
func (p *Population) Evolve(ctx context.Context, strategy Strategy, generations int) error {
	if strategy == nil {
		return errors.New(errors.InvalidConfig, "evolve requires a strategy")
	}
	if generations < 1 {
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "generation budget must be positive"),
			errors.Fields{"generations": generations},
		)
	}

	ctx = logging.WithRunID(ctx, p.id)
	for g := 0; g < generations; g++ {
		if err := errors.CheckContext(ctx, "evolve"); err != nil {
			return errors.WithFields(err, errors.Fields{"generation": p.generation})
		}
		genCtx := logging.WithGeneration(ctx, p.generation)

		p.state = StateEvolving
		done, err := strategy.Generation(genCtx, p)
		if err != nil {
			return errors.WithFields(err, errors.Fields{"generation": p.generation})
		}
		p.state = StateEvaluated
		p.generation++

		p.logger.Debug(genCtx, "generation complete: individuals=%d ideal=%v", p.Len(), p.ideal)
		if done {
			p.logger.Info(genCtx, "strategy signalled early termination")
			break
		}
	}
	p.state = StateTerminated
	return nil
}

// Mate produces offspring from the mating pool using the recombination
// variant fixed at construction. For the Separate variant, crossover runs
// first and mutation is applied to the offspring in place.
func (p *Population) Mate(matingPool []core.Genome) ([]core.Genome, error) {
	if p.rng == nil {
		return nil, errors.New(errors.InvalidConfig, "mate requires a random source, see WithRNG")
	}
	switch r := p.recomb.(type) {
	case Combined:
		return r.Mate(matingPool, p.genomes, p.rng), nil
	case Separate:
		offspring := r.Crossover(matingPool, p.genomes, p.rng)
		r.Mutation(offspring, p.genomes, p.rng, p.cfg.LowerLimit, p.cfg.UpperLimit)
		return offspring, nil
	case nil:
		return nil, errors.New(errors.InvalidConfig, "no recombination configured, see WithRecombination")
	default:
		return nil, errors.New(errors.InvalidConfig, "unknown recombination variant")
	}
}
