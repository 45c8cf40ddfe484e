package gen

import (
	"slices"

	"union-generator/internal/model"
)

// CollectArities returns the sorted distinct arities of targets.
func CollectArities(targets []*model.UnionTarget) []int {
	seen := make(map[int]bool, len(targets))
	for _, t := range targets {
		if t == nil || t.Arity() == 0 {
			continue
		}
		seen[t.Arity()] = true
	}

	arities := make([]int, 0, len(seen))
	for arity := range seen {
		arities = append(arities, arity)
	}
	slices.Sort(arities)

	return arities
}
