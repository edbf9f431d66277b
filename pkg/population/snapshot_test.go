package population

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotIsDeepCopy(t *testing.T) {
	p := newTestPopulation(t, Config{})
	require.NoError(t, p.Add(context.Background(), genomes([]float64{1, 5}, []float64{2, 3})))

	snap := p.Snapshot()
	assert.Equal(t, p.ID(), snap.ID)
	assert.Equal(t, p.Generation(), snap.Generation)
	assert.Equal(t, p.Objectives(), snap.Objectives)

	// Mutating the population does not touch the snapshot.
	require.NoError(t, p.Remove([]int{0}, Delete))
	p.Objectives()[0][0] = -1

	assert.Equal(t, [][]float64{{1, 5}, {2, 3}}, snap.Objectives)
	assert.Len(t, snap.Genomes, 2)
}

func TestRestoreWithoutReEvaluation(t *testing.T) {
	p := newTestPopulation(t, Config{})
	require.NoError(t, p.Add(context.Background(), genomes([]float64{1, 5}, []float64{2, 3})))
	snap := p.Snapshot()
	snap.Generation = 7

	restored, err := Restore(stubEvaluator{numObj: 2}, Config{}, snap)
	require.NoError(t, err)

	assert.Equal(t, snap.ID, restored.ID())
	assert.Equal(t, 7, restored.Generation())
	assert.Equal(t, StateSeeded, restored.State())
	assert.Equal(t, p.Objectives(), restored.Objectives())
	assert.Equal(t, p.Fitness(), restored.Fitness())
	assert.Equal(t, p.IdealFitness(), restored.IdealFitness())
	assert.Equal(t, p.WorstFitness(), restored.WorstFitness())
	assert.Equal(t, 2, restored.Len())
}

func TestRestoreEmptySnapshot(t *testing.T) {
	p := newTestPopulation(t, Config{})
	snap := p.Snapshot()

	restored, err := Restore(stubEvaluator{numObj: 2}, Config{}, snap)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, restored.State())
	assert.Equal(t, 0, restored.Len())
}
