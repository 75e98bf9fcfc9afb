package stats

import (
	"sort"

	"github.com/verte-zerg/tuibeat/internal/model"
)

// SelectWeakDirections selects the lowest-accuracy directions from aggregates.
func SelectWeakDirections(aggs []model.DirectionAggregate, top int) map[string]struct{} {
	weakSet := map[string]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.DirectionAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Direction < candidates[j].Direction
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		if candidates[i].Direction != "" {
			weakSet[candidates[i].Direction] = struct{}{}
		}
	}
	return weakSet
}

func accuracy(agg model.DirectionAggregate) float64 {
	total := agg.Hits + agg.Misses + agg.Wrong
	if total == 0 {
		return 1.0
	}
	return float64(agg.Hits) / float64(total)
}
