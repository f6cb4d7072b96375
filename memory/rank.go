package memory

import (
	"math"
	"strings"
	"time"
)

// RankWeights controls the long-term recall score
//
//	w1*similarity + w2*recency_decay + w3*log(1+access_count)
//
// Defaults weight the three terms equally.
type RankWeights struct {
	Similarity float64
	Recency    float64
	Access     float64
}

// DefaultRankWeights weights similarity, recency and access history equally.
var DefaultRankWeights = RankWeights{
	Similarity: 1.0 / 3,
	Recency:    1.0 / 3,
	Access:     1.0 / 3,
}

func (w RankWeights) score(similarity, recency float64, accessCount int) float64 {
	return w.Similarity*similarity +
		w.Recency*recency +
		w.Access*math.Log1p(float64(accessCount))
}

// tokenize lowercases and splits text into whitespace-delimited terms.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// keywordOverlap scores two texts by shared-token ratio: |A∩B| over the
// larger of the two token sets, in [0,1].
func keywordOverlap(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	common := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common++
		}
	}

	larger := len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}

	return float64(common) / float64(larger)
}

// cosineSimilarity computes cosine similarity between two vectors, or 0 when
// either is empty or the dimensions differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// recencyDecay maps entry age onto (0,1], halving every halfLife.
func recencyDecay(age, halfLife time.Duration) float64 {
	if halfLife <= 0 || age <= 0 {
		return 1
	}
	return math.Exp2(-float64(age) / float64(halfLife))
}
