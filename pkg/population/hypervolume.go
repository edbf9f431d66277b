package population

import (
	"sort"

	"github.com/evoforge/evonn-go/pkg/errors"
)

// Hypervolume computes the hypervolume of the current non-dominated front
// with respect to a reference point. Front points not strictly inside the
// reference point are discarded before the computation. The reference may be
// given per objective or as a single value broadcast to all objectives.
// Only the two-objective case is supported.
func (p *Population) Hypervolume(ref []float64) (float64, error) {
	numObj := p.NumObjectives()
	switch len(ref) {
	case numObj:
	case 1:
		broadcast := make([]float64, numObj)
		for j := range broadcast {
			broadcast[j] = ref[0]
		}
		ref = broadcast
	default:
		return 0, errors.WithFields(
			errors.New(errors.InvalidInput, "reference point length does not match objective count"),
			errors.Fields{"ref": len(ref), "objectives": numObj},
		)
	}
	if numObj != 2 {
		return 0, errors.WithFields(
			errors.New(errors.InvalidInput, "hypervolume is only implemented for two objectives"),
			errors.Fields{"objectives": numObj},
		)
	}

	var points [][]float64
	for _, idx := range p.NonDominatedFront() {
		row := p.fitness[idx]
		if row[0] < ref[0] && row[1] < ref[1] {
			points = append(points, row)
		}
	}
	if len(points) == 0 {
		return 0, nil
	}

	sort.Slice(points, func(a, b int) bool {
		if points[a][0] != points[b][0] {
			return points[a][0] < points[b][0]
		}
		return points[a][1] < points[b][1]
	})

	// Rectangle sweep over the staircase formed by the front.
	hv := 0.0
	lastY := ref[1]
	for _, pt := range points {
		if pt[1] >= lastY {
			continue
		}
		hv += (ref[0] - pt[0]) * (lastY - pt[1])
		lastY = pt[1]
	}
	return hv, nil
}
