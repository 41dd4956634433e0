package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero left", []float32{0, 0}, []float32{1, 2}, 0},
		{"zero right", []float32{1, 2}, []float32{0, 0}, 0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_Bounds(t *testing.T) {
	vectors := [][]float32{
		{0.3, -0.7, 2.1},
		{5, 5, 5},
		{-1, 0.001, 4},
		{0.0001, 0, 0},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			s := CosineSimilarity(a, b)
			assert.GreaterOrEqual(t, s, -1.0-1e-9)
			assert.LessOrEqual(t, s, 1.0+1e-9)
		}
		assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-9)
	}
}

func TestRetrieve_Ranking(t *testing.T) {
	query := []float32{1, 0}
	chunks := []Scored{
		{Text: "orthogonal", Vector: []float32{0, 1}},
		{Text: "exact", Vector: []float32{2, 0}},
		{Text: "close", Vector: []float32{1, 0.5}},
	}

	got := Retrieve(query, chunks, 3)
	require.Equal(t, []string{"exact", "close", "orthogonal"}, got)
}

func TestRetrieve_TopKLimits(t *testing.T) {
	query := []float32{1, 0}
	chunks := []Scored{
		{Text: "a", Vector: []float32{1, 0}},
		{Text: "b", Vector: []float32{0.9, 0.1}},
		{Text: "c", Vector: []float32{0, 1}},
	}

	assert.Len(t, Retrieve(query, chunks, 2), 2)
	assert.Len(t, Retrieve(query, chunks, 10), 3, "never more than the chunk count")
	assert.Empty(t, Retrieve(query, chunks, 0))
}

func TestRetrieve_TiesKeepChunkOrder(t *testing.T) {
	query := []float32{1, 0}
	chunks := []Scored{
		{Text: "first", Vector: []float32{3, 0}},
		{Text: "second", Vector: []float32{1, 0}},
		{Text: "third", Vector: []float32{2, 0}},
	}

	// All score exactly 1.0; stable sort preserves input order.
	got := Retrieve(query, chunks, 3)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestRetrieve_Empty(t *testing.T) {
	assert.Empty(t, Retrieve([]float32{1}, nil, 5))
}
