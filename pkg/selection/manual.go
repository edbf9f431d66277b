package selection

import (
	"context"

	"github.com/evoforge/evonn-go/pkg/errors"
	"github.com/evoforge/evonn-go/pkg/population"
)

// PendingSelection is an explicit suspend point for the manual policy. It
// carries the training-error-vs-complexity trade-off of the full population
// and its non-dominated subset so an external observer can present them, and
// is resumed by a later call with the chosen index. This keeps human-in-the-
// loop selection composable with non-interactive automation and testing.
type PendingSelection struct {
	// Front holds the population indices on the non-dominated front.
	Front []int
	// Objectives is a copy of the full objectives matrix.
	Objectives [][]float64
	// FrontObjectives holds the objective rows of the front, row-aligned
	// with Front.
	FrontObjectives [][]float64

	onFront map[int]bool
}

// BeginManual snapshots the trade-off for presentation and returns the
// pending request. The snapshot is decoupled from later population changes.
func (s *Selector) BeginManual(pop *population.Population, front []int) *PendingSelection {
	pending := &PendingSelection{
		Front:   append([]int(nil), front...),
		onFront: make(map[int]bool, len(front)),
	}
	for _, row := range pop.Objectives() {
		pending.Objectives = append(pending.Objectives, append([]float64(nil), row...))
	}
	for _, idx := range front {
		pending.onFront[idx] = true
		pending.FrontObjectives = append(pending.FrontObjectives, pending.Objectives[idx])
	}
	return pending
}

// Resume completes the pending selection with the chosen index. Indices not
// on the non-dominated front are rejected with an InvalidIndex error; the
// caller re-prompts and resumes again.
func (ps *PendingSelection) Resume(idx int) (int, error) {
	if !ps.onFront[idx] {
		return 0, errors.WithFields(
			errors.New(errors.InvalidIndex, "chosen index is not on the non-dominated front"),
			errors.Fields{"index": idx},
		)
	}
	return idx, nil
}

// Await blocks until a valid front index arrives on choices, re-prompting on
// invalid input by discarding it. Cancellation or closing the channel fails
// the selection with SelectionCancelled rather than hanging; callers supply
// a timeout through the context.
func (ps *PendingSelection) Await(ctx context.Context, choices <-chan int) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, errors.Wrap(ctx.Err(), errors.SelectionCancelled, "manual selection cancelled")
		case idx, ok := <-choices:
			if !ok {
				return 0, errors.New(errors.SelectionCancelled, "manual selection input closed")
			}
			if _, err := ps.Resume(idx); err != nil {
				// Out-of-front or otherwise invalid pick: keep waiting.
				continue
			}
			return idx, nil
		}
	}
}

// ChannelChooser adapts a channel of candidate indices into a Chooser, for
// wiring Await into Selector.Select.
func ChannelChooser(choices <-chan int) Chooser {
	return func(ctx context.Context, pending *PendingSelection) (int, error) {
		return pending.Await(ctx, choices)
	}
}
