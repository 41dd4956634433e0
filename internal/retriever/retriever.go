// Package retriever ranks document chunks against a query vector by cosine
// similarity and returns the top-k chunk texts.
package retriever

import (
	"math"
	"sort"
)

// Scored pairs a chunk text with the vector that embeds it.
type Scored struct {
	Text   string
	Vector []float32
}

// candidate holds a chunk's similarity score during ranking.
type candidate struct {
	index int
	score float64
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|), or 0 when either vector
// has zero norm or the dimensions disagree.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Retrieve returns the texts of the k chunks most similar to queryVector,
// highest similarity first. Ties keep original chunk order. Fewer than k
// chunks returns all of them; empty input returns nothing.
func Retrieve(queryVector []float32, chunks []Scored, k int) []string {
	if len(chunks) == 0 || k <= 0 {
		return nil
	}

	candidates := make([]candidate, len(chunks))
	for i, ch := range chunks {
		candidates[i] = candidate{
			index: i,
			score: CosineSimilarity(queryVector, ch.Vector),
		}
	}

	// Stable: equal scores keep document order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	texts := make([]string, k)
	for i := 0; i < k; i++ {
		texts[i] = chunks[candidates[i].index].Text
	}
	return texts
}
