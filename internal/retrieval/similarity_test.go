package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical vectors", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "opposite vectors", a: []float32{1, 2, 3}, b: []float32{-1, -2, -3}, want: -1},
		{name: "orthogonal vectors", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 2}, want: 0},
		{name: "both empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.7, -0.5, 3.3}
	assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), 1e-12)
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	scaled := []float32{10, 20, 30}
	assert.InDelta(t, 1, CosineSimilarity(a, scaled), 1e-9)
}

func TestKeywordScore(t *testing.T) {
	text := "Heart failure with reduced ejection fraction. Manage heart failure per guideline."

	tests := []struct {
		name  string
		query string
		want  float64
	}{
		{name: "repeated term counted per occurrence", query: "failure", want: 2},
		{name: "case insensitive", query: "HEART", want: 2},
		{name: "short tokens skipped", query: "of to is", want: 0},
		{name: "multiple tokens summed", query: "heart fraction", want: 3},
		{name: "regex metacharacters treated literally", query: "fraction.", want: 1},
		{name: "no match", query: "nephrology", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keywordScore(tt.query, text))
		})
	}
}
