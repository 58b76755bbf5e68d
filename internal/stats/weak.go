package stats

import "github.com/verte-zerg/keycamp/internal/model"

// SelectWeakKeys returns up to top keys with the lowest accuracy, weakest
// first. Keys never typed count as fully accurate. A top of zero or less
// returns every key.
func SelectWeakKeys(aggs []model.KeyAggregate, top int) []string {
	if len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.KeyAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sortByAccuracy(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Key)
	}
	return out
}

func keyAccuracy(agg model.KeyAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
