package population

import (
	"math"
	"sort"
)

// Dominates reports whether fitness row a strictly beats fitness row b in
// every objective. A genome stays on the non-dominated front unless some
// other genome is strictly better in all objectives.
func Dominates(a, b []float64) bool {
	for j := range a {
		if !(a[j] < b[j]) {
			return false
		}
	}
	return len(a) > 0
}

// NonDominatedFront returns the indices of individuals not dominated by any
// other individual, in ascending index order. The front is recomputed on
// demand, never cached. A specialized sweep handles the two-objective case;
// three or more objectives use the general dominance sort. Both return the
// same set for two-objective inputs.
func (p *Population) NonDominatedFront() []int {
	return FrontIndices(p.fitness)
}

// FrontIndices computes the non-dominated subset of a fitness matrix. All
// objectives are treated as minimized; rows must share one length.
func FrontIndices(fitness [][]float64) []int {
	if len(fitness) == 0 {
		return nil
	}
	if len(fitness[0]) == 2 {
		return frontTwoObjective(fitness)
	}
	return frontGeneral(fitness)
}

// frontTwoObjective is a total-order sweep: sort by the first objective and
// keep a running best-so-far on the second. A point is dominated exactly when
// some point with a strictly smaller first objective also has a strictly
// smaller second objective.
func frontTwoObjective(fitness [][]float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa, fb := fitness[order[a]], fitness[order[b]]
		if fa[0] != fb[0] {
			return fa[0] < fb[0]
		}
		return fa[1] < fb[1]
	})

	var front []int
	best := math.Inf(1) // min second objective over strictly smaller first objectives
	i := 0
	for i < len(order) {
		// Walk one group of equal first-objective values.
		j := i
		groupBest := math.Inf(1)
		for j < len(order) && fitness[order[j]][0] == fitness[order[i]][0] {
			f1 := fitness[order[j]][1]
			if f1 <= best {
				front = append(front, order[j])
			}
			groupBest = math.Min(groupBest, f1)
			j++
		}
		best = math.Min(best, groupBest)
		i = j
	}
	sort.Ints(front)
	return front
}

// frontGeneral is the pairwise dominance sort for any objective count.
func frontGeneral(fitness [][]float64) []int {
	var front []int
	for i, row := range fitness {
		dominated := false
		for k, other := range fitness {
			if k == i {
				continue
			}
			if Dominates(other, row) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, i)
		}
	}
	return front
}
