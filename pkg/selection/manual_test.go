package selection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoforge/evonn-go/pkg/errors"
)

func TestBeginManualSnapshotsTradeOff(t *testing.T) {
	pop := buildPopulation(t,
		&stubGenome{obj: []float64{0.2, 9}},
		&stubGenome{obj: []float64{0.9, 4}},
		&stubGenome{obj: []float64{0.5, 3}},
	)

	pending := New().BeginManual(pop, []int{0, 2})
	assert.Equal(t, []int{0, 2}, pending.Front)
	assert.Equal(t, [][]float64{{0.2, 9}, {0.9, 4}, {0.5, 3}}, pending.Objectives)
	assert.Equal(t, [][]float64{{0.2, 9}, {0.5, 3}}, pending.FrontObjectives)

	// The snapshot is decoupled from later population changes.
	pop.Objectives()[0][0] = 99
	assert.Equal(t, 0.2, pending.Objectives[0][0])
}

func TestResumeValidatesFrontMembership(t *testing.T) {
	pop := buildPopulation(t,
		&stubGenome{obj: []float64{0.2, 9}},
		&stubGenome{obj: []float64{0.9, 4}},
	)
	pending := New().BeginManual(pop, []int{0})

	idx, err := pending.Resume(0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = pending.Resume(1)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidIndex, errors.Code(err))

	_, err = pending.Resume(-3)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidIndex, errors.Code(err))
}

func TestAwaitDiscardsInvalidPicks(t *testing.T) {
	pop := buildPopulation(t,
		&stubGenome{obj: []float64{0.2, 9}},
		&stubGenome{obj: []float64{0.9, 4}},
	)
	pending := New().BeginManual(pop, []int{1})

	choices := make(chan int, 3)
	choices <- 0 // not on the front, discarded
	choices <- 7 // out of range, discarded
	choices <- 1

	idx, err := pending.Await(context.Background(), choices)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestAwaitCancellation(t *testing.T) {
	pop := buildPopulation(t, &stubGenome{obj: []float64{0.2, 9}})
	pending := New().BeginManual(pop, []int{0})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := pending.Await(ctx, make(chan int))
	require.Error(t, err)
	assert.Equal(t, errors.SelectionCancelled, errors.Code(err))
}

func TestAwaitClosedChannel(t *testing.T) {
	pop := buildPopulation(t, &stubGenome{obj: []float64{0.2, 9}})
	pending := New().BeginManual(pop, []int{0})

	choices := make(chan int)
	close(choices)

	_, err := pending.Await(context.Background(), choices)
	require.Error(t, err)
	assert.Equal(t, errors.SelectionCancelled, errors.Code(err))
}

func TestSelectManualWithChannelChooser(t *testing.T) {
	pop := buildPopulation(t,
		&stubGenome{obj: []float64{0.2, 9}},
		&stubGenome{obj: []float64{0.5, 3}},
	)

	choices := make(chan int, 2)
	choices <- 5 // invalid, re-prompted
	choices <- 1

	s := New(WithChooser(ChannelChooser(choices)))
	idx, err := s.Select(context.Background(), pop, []int{0, 1}, Manual)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}
