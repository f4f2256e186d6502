package generator

import (
	"math/rand"
	"testing"

	"github.com/verte-zerg/ditado/internal/model"
)

var sample = []model.Exercise{
	{ID: "a", Text: "O gato dorme."},
	{ID: "b", Text: "A casa é bonita."},
	{ID: "c", Text: "Rãs e ratos."},
}

func TestPickAvoidsPrevious(t *testing.T) {
	g := NewWithSource(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		if ex := g.Pick(sample, "a"); ex.ID == "a" {
			t.Fatalf("picked the previous exercise")
		}
	}
}

func TestPickSingleExercise(t *testing.T) {
	g := NewWithSource(rand.NewSource(1))
	only := sample[:1]
	if ex := g.Pick(only, "a"); ex.ID != "a" {
		t.Fatalf("expected the only exercise, got %q", ex.ID)
	}
}

func TestPickWeightedPrefersWeakLetters(t *testing.T) {
	g := NewWithSource(rand.NewSource(42))
	weak := map[rune]struct{}{'r': {}, 'ã': {}}
	counts := map[string]int{}
	for i := 0; i < 300; i++ {
		counts[g.PickWeighted(sample, "", weak, 10).ID]++
	}
	if counts["c"] <= counts["a"] || counts["c"] <= counts["b"] {
		t.Fatalf("expected weak-letter exercise to dominate, got %v", counts)
	}
}

func TestWeakLetterCount(t *testing.T) {
	weak := map[rune]struct{}{'r': {}, 'ã': {}}
	if got := WeakLetterCount("Rãs e ratos.", weak); got != 3 {
		t.Fatalf("expected 3 weak letters, got %d", got)
	}
	if got := WeakLetterCount("O gato dorme.", nil); got != 0 {
		t.Fatalf("expected 0 with empty set, got %d", got)
	}
}
