package stats

import (
	"sort"

	"github.com/verte-zerg/ditado/internal/model"
)

// TopLettersByFrequency returns the N letters seen most often.
func TopLettersByFrequency(aggs []model.LetterAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.LetterAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		ti := items[i].Correct + items[i].Incorrect
		tj := items[j].Correct + items[j].Incorrect
		if ti == tj {
			return items[i].Letter < items[j].Letter
		}
		return ti > tj
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, item := range items[:n] {
		out = append(out, item.Letter)
	}
	return out
}
