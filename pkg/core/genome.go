package core

import (
	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/errors"
)

// Genome is a candidate model structure subject to evolutionary search. Two
// encodings exist: a flat single-matrix genome and a modular multi-subnet
// genome. Genomes are owned by exactly one population at a time.
type Genome interface {
	// Clone returns a deep copy sharing no backing storage with the receiver.
	Clone() Genome
}

// FlatGenome is a single weight matrix. Row 0 is the bias row; rows 1..n map
// to the input features; columns are hidden nodes.
type FlatGenome struct {
	W *mat.Dense
}

// NewFlatGenome wraps a weight matrix. The matrix must have at least two rows
// (one bias row plus one feature row) and one column.
func NewFlatGenome(w *mat.Dense) (*FlatGenome, error) {
	if w == nil {
		return nil, errors.New(errors.InvalidInput, "flat genome requires a weight matrix")
	}
	rows, cols := w.Dims()
	if rows < 2 || cols < 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "flat genome weight matrix too small"),
			errors.Fields{"rows": rows, "cols": cols},
		)
	}
	return &FlatGenome{W: w}, nil
}

// Features returns the number of input features the genome consumes.
func (g *FlatGenome) Features() int {
	r, _ := g.W.Dims()
	return r - 1
}

// HiddenNodes returns the width of the hidden layer.
func (g *FlatGenome) HiddenNodes() int {
	_, c := g.W.Dims()
	return c
}

func (g *FlatGenome) Clone() Genome {
	return &FlatGenome{W: mat.DenseCopyOf(g.W)}
}

// Layer is one fixed-size weight record in a modular genome's arena. Row 0 of
// the weight block is the bias row. The weights are stored row-major.
type Layer struct {
	Subnet int
	Index  int
	Rows   int
	Cols   int
	W      []float64
}

// Matrix exposes the layer weights as a dense matrix backed by the arena
// storage. Mutations through the returned matrix write into the genome.
func (l *Layer) Matrix() *mat.Dense {
	return mat.NewDense(l.Rows, l.Cols, l.W)
}

// OutputNodes returns the width of the layer's output block.
func (l *Layer) OutputNodes() int { return l.Cols }

// InputNodes returns the number of non-bias inputs the layer consumes.
func (l *Layer) InputNodes() int { return l.Rows - 1 }

// ModularGenome is an ordered sequence of independent subnetworks, each an
// ordered sequence of weight layers. Layers are stored in a single arena of
// fixed-size records indexed by (subnet, layer) rather than nested slices, to
// keep evaluation cache-friendly and avoid deep aliasing.
type ModularGenome struct {
	numSubnets int
	counts     []int   // layers per subnet
	layers     []Layer // arena, grouped by subnet in ascending order
}

// NewModularGenome creates an empty modular genome with the given number of
// subnetworks. Layers are attached with AppendLayer in subnet order.
func NewModularGenome(numSubnets int) (*ModularGenome, error) {
	if numSubnets < 1 {
		return nil, errors.New(errors.InvalidInput, "modular genome requires at least one subnetwork")
	}
	return &ModularGenome{
		numSubnets: numSubnets,
		counts:     make([]int, numSubnets),
	}, nil
}

// NewModularGenomeFromLayers rebuilds a genome from an arena, e.g. when
// restoring a checkpoint. Layers must be grouped by subnet in ascending order
// with consecutive indices starting at zero.
func NewModularGenomeFromLayers(numSubnets int, layers []Layer) (*ModularGenome, error) {
	g, err := NewModularGenome(numSubnets)
	if err != nil {
		return nil, err
	}
	for _, l := range layers {
		if l.Subnet < 0 || l.Subnet >= numSubnets {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "layer subnet out of range"),
				errors.Fields{"subnet": l.Subnet, "subnets": numSubnets},
			)
		}
		m := mat.NewDense(l.Rows, l.Cols, l.W)
		if err := g.AppendLayer(l.Subnet, m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AppendLayer attaches a layer to the given subnetwork. Subnets must be
// filled in ascending order so the arena stays grouped; the layer index is
// assigned automatically. The matrix data is copied into the arena.
func (g *ModularGenome) AppendLayer(subnet int, w *mat.Dense) error {
	if subnet < 0 || subnet >= g.numSubnets {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "subnet out of range"),
			errors.Fields{"subnet": subnet, "subnets": g.numSubnets},
		)
	}
	if len(g.layers) > 0 && subnet < g.layers[len(g.layers)-1].Subnet {
		return errors.New(errors.InvalidInput, "layers must be appended in subnet order")
	}
	rows, cols := w.Dims()
	if rows < 2 || cols < 1 {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "layer weight matrix too small"),
			errors.Fields{"rows": rows, "cols": cols},
		)
	}
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = w.At(i, j)
		}
	}
	g.layers = append(g.layers, Layer{
		Subnet: subnet,
		Index:  g.counts[subnet],
		Rows:   rows,
		Cols:   cols,
		W:      data,
	})
	g.counts[subnet]++
	return nil
}

// NumSubnets returns the number of subnetworks.
func (g *ModularGenome) NumSubnets() int { return g.numSubnets }

// NumLayers returns the number of layers in the given subnetwork.
func (g *ModularGenome) NumLayers(subnet int) int {
	if subnet < 0 || subnet >= g.numSubnets {
		return 0
	}
	return g.counts[subnet]
}

// Layers returns the full arena. The records share storage with the genome.
func (g *ModularGenome) Layers() []Layer { return g.layers }

// SubnetLayers returns the arena records belonging to one subnetwork, in
// layer order. The records share storage with the genome.
func (g *ModularGenome) SubnetLayers(subnet int) []Layer {
	offset := 0
	for s := 0; s < subnet; s++ {
		offset += g.counts[s]
	}
	return g.layers[offset : offset+g.counts[subnet]]
}

// LayerAt returns a pointer into the arena for in-place mutation.
func (g *ModularGenome) LayerAt(i int) *Layer { return &g.layers[i] }

func (g *ModularGenome) Clone() Genome {
	clone := &ModularGenome{
		numSubnets: g.numSubnets,
		counts:     append([]int(nil), g.counts...),
		layers:     make([]Layer, len(g.layers)),
	}
	for i, l := range g.layers {
		cl := l
		cl.W = append([]float64(nil), l.W...)
		clone.layers[i] = cl
	}
	return clone
}

// FeatureSubsets assigns each subnetwork the input-feature indices it
// consumes. Subsets are established once at problem-setup time and are
// immutable thereafter; they are shared by every genome in a run.
type FeatureSubsets [][]int

// NewFeatureSubsets validates the construction invariant: every subset is
// non-empty with in-range, distinct indices, and every feature index appears
// in at least one subset.
func NewFeatureSubsets(subsets [][]int, numFeatures int) (FeatureSubsets, error) {
	if len(subsets) == 0 {
		return nil, errors.New(errors.InvalidInput, "at least one feature subset is required")
	}
	covered := make([]bool, numFeatures)
	for s, subset := range subsets {
		if len(subset) == 0 {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "feature subset must not be empty"),
				errors.Fields{"subnet": s},
			)
		}
		seen := make(map[int]bool, len(subset))
		for _, f := range subset {
			if f < 0 || f >= numFeatures {
				return nil, errors.WithFields(
					errors.New(errors.InvalidInput, "feature index out of range"),
					errors.Fields{"subnet": s, "feature": f, "features": numFeatures},
				)
			}
			if seen[f] {
				return nil, errors.WithFields(
					errors.New(errors.InvalidInput, "duplicate feature index in subset"),
					errors.Fields{"subnet": s, "feature": f},
				)
			}
			seen[f] = true
			covered[f] = true
		}
	}
	for f, ok := range covered {
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "every feature must appear in at least one subset"),
				errors.Fields{"feature": f},
			)
		}
	}
	out := make(FeatureSubsets, len(subsets))
	for i, subset := range subsets {
		out[i] = append([]int(nil), subset...)
	}
	return out, nil
}
