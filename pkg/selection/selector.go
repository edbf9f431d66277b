package selection

import (
	"context"
	"math"

	"github.com/evoforge/evonn-go/pkg/core"
	"github.com/evoforge/evonn-go/pkg/errors"
	"github.com/evoforge/evonn-go/pkg/logging"
	"github.com/evoforge/evonn-go/pkg/population"
)

// Policy names the champion-selection criterion.
type Policy string

const (
	// MinError picks the individual with the smallest training-error
	// objective over the whole population.
	MinError Policy = "min_error"
	// AkaikeCorrected ranks the non-dominated front by the corrected
	// information criterion AICc and picks the minimum.
	AkaikeCorrected Policy = "akaike_corrected"
	// Manual suspends the run and waits for an external observer to pick
	// an index from the non-dominated front.
	Manual Policy = "manual"
)

// Selector picks one champion genome from a population under a selection
// policy. It never mutates population state.
type Selector struct {
	scorer  core.CriterionScorer
	chooser Chooser
	logger  *logging.Logger
}

// Chooser resolves a manual selection without blocking the library: it
// receives the pending request and returns the chosen population index.
type Chooser func(ctx context.Context, pending *PendingSelection) (int, error)

// Option configures optional selector collaborators.
type Option func(*Selector)

// WithCriterionScorer supplies the AICc scorer, required by the
// AkaikeCorrected policy.
func WithCriterionScorer(scorer core.CriterionScorer) Option {
	return func(s *Selector) { s.scorer = scorer }
}

// WithChooser supplies the external observer used by the Manual policy.
func WithChooser(chooser Chooser) Option {
	return func(s *Selector) { s.chooser = chooser }
}

// WithLogger overrides the global logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Selector) { s.logger = l }
}

// New creates a selector.
func New(opts ...Option) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetLogger()
	}
	return s
}

// Select returns the champion index under the given policy. The Manual
// policy requires a Chooser; the other policies never suspend.
func (s *Selector) Select(ctx context.Context, pop *population.Population, front []int, policy Policy) (int, error) {
	switch policy {
	case MinError:
		return s.MinError(pop)
	case AkaikeCorrected:
		return s.CorrectedCriterion(ctx, pop, front)
	case Manual:
		if s.chooser == nil {
			return 0, errors.New(errors.InvalidConfig, "manual policy requires a chooser, see WithChooser")
		}
		pending := s.BeginManual(pop, front)
		idx, err := s.chooser(ctx, pending)
		if err != nil {
			return 0, err
		}
		return pending.Resume(idx)
	default:
		return 0, errors.WithFields(
			errors.New(errors.InvalidConfig, "unknown selection policy"),
			errors.Fields{"policy": string(policy)},
		)
	}
}

// MinError returns the index with the smallest training-error objective over
// the whole population, ties broken by lowest index.
func (s *Selector) MinError(pop *population.Population) (int, error) {
	if pop.Len() == 0 {
		return 0, errors.New(errors.InvalidInput, "cannot select from an empty population")
	}
	best := 0
	bestErr := pop.Objectives()[0][0]
	for i := 1; i < pop.Len(); i++ {
		if e := pop.Objectives()[i][0]; e < bestErr {
			best, bestErr = i, e
		}
	}
	return best, nil
}

// CorrectedCriterion recomputes AICc for every index on the non-dominated
// front and returns the index with the minimum value, ties broken by lowest
// index. Candidates whose criterion is undefined are skipped; if every
// candidate is undefined the selection fails with a DegenerateModel error.
func (s *Selector) CorrectedCriterion(ctx context.Context, pop *population.Population, front []int) (int, error) {
	if s.scorer == nil {
		return 0, errors.New(errors.InvalidConfig, "corrected criterion requires a scorer, see WithCriterionScorer")
	}
	if len(front) == 0 {
		return 0, errors.New(errors.InvalidInput, "non-dominated front is empty")
	}

	best := -1
	bestScore := math.Inf(1)
	for _, idx := range front {
		if idx < 0 || idx >= pop.Len() {
			return 0, errors.WithFields(
				errors.New(errors.InvalidIndex, "front index out of range"),
				errors.Fields{"index": idx, "size": pop.Len()},
			)
		}
		score, err := s.scorer.InformationCriterion(pop.Genome(idx))
		if err != nil {
			s.logger.Warn(ctx, "skipping front index %d: %v", idx, err)
			continue
		}
		if score < bestScore {
			best, bestScore = idx, score
		}
	}
	if best < 0 {
		return 0, errors.New(errors.DegenerateModel, "information criterion undefined for every candidate on the front")
	}
	return best, nil
}
