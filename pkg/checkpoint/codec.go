package checkpoint

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/evoforge/evonn-go/pkg/core"
	"github.com/evoforge/evonn-go/pkg/errors"
	"github.com/evoforge/evonn-go/pkg/population"
)

const (
	kindFlat    = "flat"
	kindModular = "modular"
)

// layerRecord is the wire form of a single subnet layer.
type layerRecord struct {
	Subnet int       `json:"subnet"`
	Index  int       `json:"index"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	W      []float64 `json:"w"`
}

// genomeRecord is the wire form of a genome. Exactly one encoding applies
// depending on Kind.
type genomeRecord struct {
	Kind    string        `json:"kind"`
	Rows    int           `json:"rows,omitempty"`
	Cols    int           `json:"cols,omitempty"`
	Data    []float64     `json:"data,omitempty"`
	Subnets int           `json:"subnets,omitempty"`
	Layers  []layerRecord `json:"layers,omitempty"`
}

// snapshotRecord is the wire form of a population snapshot.
type snapshotRecord struct {
	ID         string         `json:"id"`
	Generation int            `json:"generation"`
	Genomes    []genomeRecord `json:"genomes"`
	Objectives [][]jsonFloat  `json:"objectives"`
	Fitness    [][]jsonFloat  `json:"fitness"`
	Violations [][]jsonFloat  `json:"violations,omitempty"`
	Ideal      []jsonFloat    `json:"ideal"`
	Worst      []jsonFloat    `json:"worst"`
}

// jsonFloat is a float64 whose JSON form survives non-finite values, which
// encoding/json refuses to emit. Candidates whose evaluation failed are
// absorbed with +/-Inf sentinel objectives, and a fresh population carries
// infinite ideal/worst bounds, so snapshots routinely contain them.
type jsonFloat float64

const (
	tokenPosInf = `"+Inf"`
	tokenNegInf = `"-Inf"`
	tokenNaN    = `"NaN"`
)

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(tokenPosInf), nil
	case math.IsInf(v, -1):
		return []byte(tokenNegInf), nil
	case math.IsNaN(v):
		return []byte(tokenNaN), nil
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case tokenPosInf:
		*f = jsonFloat(math.Inf(1))
		return nil
	case tokenNegInf:
		*f = jsonFloat(math.Inf(-1))
		return nil
	case tokenNaN:
		*f = jsonFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "invalid float value"),
			errors.Fields{"value": string(data)},
		)
	}
	*f = jsonFloat(v)
	return nil
}

func encodeFloats(v []float64) []jsonFloat {
	if v == nil {
		return nil
	}
	out := make([]jsonFloat, len(v))
	for i, x := range v {
		out[i] = jsonFloat(x)
	}
	return out
}

func decodeFloats(v []jsonFloat) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func encodeMatrix(v [][]float64) [][]jsonFloat {
	if v == nil {
		return nil
	}
	out := make([][]jsonFloat, len(v))
	for i, row := range v {
		out[i] = encodeFloats(row)
	}
	return out
}

func decodeMatrix(v [][]jsonFloat) [][]float64 {
	if v == nil {
		return nil
	}
	out := make([][]float64, len(v))
	for i, row := range v {
		out[i] = decodeFloats(row)
	}
	return out
}

func encodeGenome(g core.Genome) (genomeRecord, error) {
	switch v := g.(type) {
	case *core.FlatGenome:
		rows, cols := v.W.Dims()
		data := make([]float64, 0, rows*cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				data = append(data, v.W.At(r, c))
			}
		}
		return genomeRecord{Kind: kindFlat, Rows: rows, Cols: cols, Data: data}, nil
	case *core.ModularGenome:
		layers := v.Layers()
		recs := make([]layerRecord, len(layers))
		for i, l := range layers {
			recs[i] = layerRecord{
				Subnet: l.Subnet,
				Index:  l.Index,
				Rows:   l.Rows,
				Cols:   l.Cols,
				W:      append([]float64(nil), l.W...),
			}
		}
		return genomeRecord{Kind: kindModular, Subnets: v.NumSubnets(), Layers: recs}, nil
	default:
		return genomeRecord{}, errors.WithFields(
			errors.New(errors.InvalidInput, "cannot encode unknown genome type"),
			errors.Fields{"type": fmt.Sprintf("%T", g)},
		)
	}
}

func decodeGenome(rec genomeRecord) (core.Genome, error) {
	switch rec.Kind {
	case kindFlat:
		if len(rec.Data) != rec.Rows*rec.Cols {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "flat genome data length does not match dimensions"),
				errors.Fields{"rows": rec.Rows, "cols": rec.Cols, "len": len(rec.Data)},
			)
		}
		w := mat.NewDense(rec.Rows, rec.Cols, append([]float64(nil), rec.Data...))
		g, err := core.NewFlatGenome(w)
		if err != nil {
			return nil, err
		}
		return g, nil
	case kindModular:
		layers := make([]core.Layer, len(rec.Layers))
		for i, l := range rec.Layers {
			if len(l.W) != l.Rows*l.Cols {
				return nil, errors.WithFields(
					errors.New(errors.InvalidInput, "layer data length does not match dimensions"),
					errors.Fields{"subnet": l.Subnet, "rows": l.Rows, "cols": l.Cols, "len": len(l.W)},
				)
			}
			layers[i] = core.Layer{
				Subnet: l.Subnet,
				Index:  l.Index,
				Rows:   l.Rows,
				Cols:   l.Cols,
				W:      append([]float64(nil), l.W...),
			}
		}
		g, err := core.NewModularGenomeFromLayers(rec.Subnets, layers)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown genome kind"),
			errors.Fields{"kind": rec.Kind},
		)
	}
}

// Marshal serializes a snapshot to its JSON wire form.
func Marshal(snap *population.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New(errors.InvalidInput, "snapshot is nil")
	}
	rec := snapshotRecord{
		ID:         snap.ID,
		Generation: snap.Generation,
		Genomes:    make([]genomeRecord, len(snap.Genomes)),
		Objectives: encodeMatrix(snap.Objectives),
		Fitness:    encodeMatrix(snap.Fitness),
		Violations: encodeMatrix(snap.Violations),
		Ideal:      encodeFloats(snap.Ideal),
		Worst:      encodeFloats(snap.Worst),
	}
	for i, g := range snap.Genomes {
		enc, err := encodeGenome(g)
		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{"genome": i})
		}
		rec.Genomes[i] = enc
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to marshal snapshot")
	}
	return data, nil
}

// Unmarshal rebuilds a snapshot from its JSON wire form.
func Unmarshal(data []byte) (*population.Snapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to unmarshal snapshot")
	}
	snap := &population.Snapshot{
		ID:         rec.ID,
		Generation: rec.Generation,
		Genomes:    make([]core.Genome, len(rec.Genomes)),
		Objectives: decodeMatrix(rec.Objectives),
		Fitness:    decodeMatrix(rec.Fitness),
		Violations: decodeMatrix(rec.Violations),
		Ideal:      decodeFloats(rec.Ideal),
		Worst:      decodeFloats(rec.Worst),
	}
	for i, g := range rec.Genomes {
		dec, err := decodeGenome(g)
		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{"genome": i})
		}
		snap.Genomes[i] = dec
	}
	return snap, nil
}
