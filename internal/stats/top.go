package stats

import (
	"sort"

	"github.com/verte-zerg/keycamp/internal/model"
)

// TopKeysByFrequency returns the top N keys by total presses.
func TopKeysByFrequency(aggs []model.KeyAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.KeyAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		ti := items[i].Correct + items[i].Incorrect
		tj := items[j].Correct + items[j].Incorrect
		if ti == tj {
			return items[i].Key < items[j].Key
		}
		return ti > tj
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, item := range items[:n] {
		out = append(out, item.Key)
	}
	return out
}
