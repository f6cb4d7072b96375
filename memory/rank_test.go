package memory

import (
	"math"
	"testing"
	"time"
)

func TestKeywordOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "capital of france", "capital of france", 1},
		{"disjoint", "alpha beta", "gamma delta", 0},
		{"partial against larger set", "capital france", "capital of france", 2.0 / 3},
		{"case and repetition insensitive", "France FRANCE france", "france", 1},
		{"empty side", "", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keywordOverlap(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("keywordOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("parallel vectors = %v, want 1", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors = %v, want 0", got)
	}
	if got := cosineSimilarity(nil, []float32{1}); got != 0 {
		t.Fatalf("empty vector = %v, want 0", got)
	}
	if got := cosineSimilarity([]float32{1, 2}, []float32{1}); got != 0 {
		t.Fatalf("dimension mismatch = %v, want 0", got)
	}
}

func TestRecencyDecay(t *testing.T) {
	halfLife := 7 * 24 * time.Hour

	if got := recencyDecay(0, halfLife); got != 1 {
		t.Fatalf("fresh entry = %v, want 1", got)
	}
	if got := recencyDecay(halfLife, halfLife); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("one half-life = %v, want 0.5", got)
	}
	if got := recencyDecay(2*halfLife, halfLife); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("two half-lives = %v, want 0.25", got)
	}
	if got := recencyDecay(time.Hour, 0); got != 1 {
		t.Fatalf("disabled half-life = %v, want 1", got)
	}
}

func TestRankWeightsScore(t *testing.T) {
	w := RankWeights{Similarity: 0.5, Recency: 0.3, Access: 0.2}

	got := w.score(0.8, 0.5, 0)
	want := 0.5*0.8 + 0.3*0.5
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", got, want)
	}

	// More accesses only ever raise the score.
	if w.score(0.8, 0.5, 10) <= got {
		t.Fatal("access history must increase the score")
	}
}
