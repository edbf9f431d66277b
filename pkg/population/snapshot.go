package population

import (
	"github.com/evoforge/evonn-go/pkg/core"
)

// Snapshot is a deep copy of the population's persistent state, suitable for
// checkpointing. The core itself requires no persistence; serializing and
// restoring snapshots is a caller concern.
type Snapshot struct {
	ID         string
	Generation int
	Genomes    []core.Genome
	Objectives [][]float64
	Fitness    [][]float64
	Violations [][]float64
	Ideal      []float64
	Worst      []float64
}

// Snapshot captures the current population state. The returned value shares
// no storage with the population.
func (p *Population) Snapshot() *Snapshot {
	s := &Snapshot{
		ID:         p.id,
		Generation: p.generation,
		Genomes:    make([]core.Genome, len(p.genomes)),
		Objectives: copyMatrix(p.objectives),
		Fitness:    copyMatrix(p.fitness),
		Violations: copyMatrix(p.violations),
		Ideal:      append([]float64(nil), p.ideal...),
		Worst:      append([]float64(nil), p.worst...),
	}
	for i, g := range p.genomes {
		s.Genomes[i] = g.Clone()
	}
	return s
}

// Restore rebuilds a population from a snapshot without re-evaluating the
// genomes. The evaluator and options must match the run that produced the
// snapshot.
func Restore(evaluator core.Evaluator, cfg Config, snap *Snapshot, opts ...Option) (*Population, error) {
	p, err := New(evaluator, cfg, opts...)
	if err != nil {
		return nil, err
	}
	p.id = snap.ID
	p.generation = snap.Generation
	p.genomes = make([]core.Genome, len(snap.Genomes))
	for i, g := range snap.Genomes {
		p.genomes[i] = g.Clone()
	}
	p.objectives = copyMatrix(snap.Objectives)
	p.fitness = copyMatrix(snap.Fitness)
	p.violations = copyMatrix(snap.Violations)
	copy(p.ideal, snap.Ideal)
	copy(p.worst, snap.Worst)
	if len(p.genomes) > 0 {
		p.state = StateSeeded
	}
	return p, nil
}

func copyMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
