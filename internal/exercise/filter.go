package exercise

import "github.com/verte-zerg/ditado/internal/model"

// FilterForLevel keeps the exercises of one level. Level 0 keeps everything.
func FilterForLevel(exercises []model.Exercise, level int) []model.Exercise {
	if level <= 0 {
		return exercises
	}
	out := make([]model.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if ex.Level == level {
			out = append(out, ex)
		}
	}
	return out
}
