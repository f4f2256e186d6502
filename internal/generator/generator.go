// Package generator picks the next dictation exercise.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/ditado/internal/dictation"
	"github.com/verte-zerg/ditado/internal/model"
)

// Generator selects exercises at random.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator backed by src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Pick selects an exercise uniformly. It avoids repeating previousID when another choice exists.
func (g *Generator) Pick(exercises []model.Exercise, previousID string) model.Exercise {
	weights := make([]float64, len(exercises))
	for i := range exercises {
		weights[i] = 1
	}
	return exercises[g.pickIndex(exercises, weights, previousID)]
}

// PickWeighted selects an exercise with a bias toward sentences containing weak letters.
func (g *Generator) PickWeighted(exercises []model.Exercise, previousID string, weakSet map[rune]struct{}, factor float64) model.Exercise {
	weights := make([]float64, len(exercises))
	for i, ex := range exercises {
		weights[i] = 1.0 + float64(WeakLetterCount(ex.Text, weakSet))*factor
	}
	return exercises[g.pickIndex(exercises, weights, previousID)]
}

// WeakLetterCount counts the letters of text that belong to weakSet.
func WeakLetterCount(text string, weakSet map[rune]struct{}) int {
	count := 0
	for _, word := range dictation.Tokenize(text) {
		for _, r := range dictation.NormalizeWord(word) {
			if _, ok := weakSet[r]; ok {
				count++
			}
		}
	}
	return count
}

func (g *Generator) pickIndex(exercises []model.Exercise, weights []float64, previousID string) int {
	if len(exercises) > 1 && previousID != "" {
		for i, ex := range exercises {
			if ex.ID == previousID {
				weights[i] = 0
			}
		}
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return g.rnd.Intn(len(exercises))
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if w > 0 && r <= acc {
			return i
		}
	}
	return len(weights) - 1
}
