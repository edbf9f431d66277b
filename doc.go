// Package evonn is a Go implementation of evolutionary surrogate modelling:
// neural network structures are evolved as genomes under a multi-objective
// trade-off between training error and structural complexity.
//
// EvoNN-Go provides populations, genome encodings, evaluators, and selection
// policies for building data-driven surrogate models. It focuses on making it
// easy to:
//   - Encode network structures as flat or modular weight genomes
//   - Evaluate candidates against training data with linear output solving
//   - Evolve populations under pluggable recombination and strategies
//   - Pick a final model from the Pareto front by error, information
//     criterion, or interactive choice
//   - Checkpoint and resume long evolution runs
//
// Key Components:
//
//   - Core: Fundamental abstractions like Genome, Dataset, Evaluator and
//     ObjectiveSense shared by every other package.
//
//   - Surrogate: Genome evaluation for the two encodings: flat (a single
//     weight matrix with a bias row feeding one hidden layer) and modular
//     (independent subnets of chained layers over fixed feature subsets,
//     concatenated into a combined hidden output). Both produce a
//     (training error, complexity) objective pair, with the linear output
//     layer solved by least squares rather than evolved.
//
//   - Population: Individuals with objective, fitness and constraint
//     matrices, monotone ideal/worst bookkeeping, mask-based removal,
//     non-dominated front extraction and the generational Evolve loop.
//
//   - Selection: Final-model policies over the Pareto front: MinError
//     (lowest training error), CorrectedCriterion (best small-sample
//     corrected information criterion) and Manual (suspend the run and
//     resume once a front index is chosen).
//
//   - Recombination: Random genome generators plus crossover and mutation
//     operators, including bounded polynomial mutation.
//
//   - Checkpoint: SQLite-backed snapshot persistence keyed by run and
//     generation.
//
// Simple Example:
//
//	import (
//	    "context"
//	    "math/rand"
//
//	    "github.com/evoforge/evonn-go/pkg/core"
//	    "github.com/evoforge/evonn-go/pkg/population"
//	    "github.com/evoforge/evonn-go/pkg/recombination"
//	    "github.com/evoforge/evonn-go/pkg/selection"
//	    "github.com/evoforge/evonn-go/pkg/surrogate"
//	)
//
//	type mateAndGrow struct{}
//
//	func (mateAndGrow) Generation(ctx context.Context, pop *population.Population) (bool, error) {
//	    offspring, err := pop.Mate(pop.Genomes())
//	    if err != nil {
//	        return false, err
//	    }
//	    return false, pop.Add(ctx, offspring)
//	}
//
//	func main() {
//	    ctx := context.Background()
//	    ds, _ := core.NewDataset(x, y)
//	    eval, _ := surrogate.NewEvaluator(ds, surrogate.Config{
//	        Activation: surrogate.Sigmoid,
//	        Loss:       surrogate.RMSE,
//	    })
//
//	    rng := rand.New(rand.NewSource(42))
//	    pop, _ := population.New(eval, population.Config{
//	        LowerLimit: -5, UpperLimit: 5,
//	    }, population.WithRNG(rng), population.WithRecombination(
//	        population.Separate{
//	            Crossover: recombination.NodeCrossover(0.5),
//	            Mutation:  recombination.GaussianMutation(0.1, 0.2),
//	        }))
//
//	    gen := recombination.FlatGenerator{NumFeatures: ds.Features(), NumNodes: 15}
//	    seeds, _ := gen.GenerateBatch(rng, 100)
//	    pop.Add(ctx, seeds)
//	    pop.Evolve(ctx, mateAndGrow{}, 50)
//
//	    front := pop.NonDominatedFront()
//	    best, _ := selection.New().Select(ctx, pop, front, selection.MinError)
//	    model, _ := eval.Finalize(pop.Genome(best))
//	    yhat, _ := model.Predict(xNew)
//	}
//
// For more examples and detailed documentation, visit:
// https://github.com/evoforge/evonn-go
//
// EvoNN-Go is released under the MIT License.
package evonn
