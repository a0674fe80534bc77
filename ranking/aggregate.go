package ranking

import (
	"sort"

	"github.com/hupe1980/llmcouncil/core"
)

// Aggregate merges the per-member rankings of a peer-review fanout into one
// consensus ordering with Borda-style scores: in a ranking of length L, the
// label at position i (1-indexed) receives L-i points, summed across all
// submitted rankings. Labels an incomplete ranking omits simply receive no
// contribution from it, not a penalty.
//
// The order argument is the delegate stage's output order (label order); it
// breaks score ties deterministically, earliest first, guaranteeing a total
// order. Labels absent from every ranking still appear with score zero.
func Aggregate(rankings []core.Ranking, order []core.Label) core.AggregateRanking {
	scores := make(map[core.Label]int, len(order))
	for _, l := range order {
		scores[l] = 0
	}

	for _, r := range rankings {
		l := len(r.Labels)
		for i, label := range r.Labels {
			if _, known := scores[label]; !known {
				// Labels outside the delegate output order are ignored.
				continue
			}
			scores[label] += l - (i + 1)
		}
	}

	pos := make(map[core.Label]int, len(order))
	for i, l := range order {
		pos[l] = i
	}

	out := make([]core.LabelScore, 0, len(order))
	for _, l := range order {
		out = append(out, core.LabelScore{Label: l, Score: scores[l]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return pos[out[i].Label] < pos[out[j].Label]
	})

	return core.AggregateRanking{Scores: out}
}
