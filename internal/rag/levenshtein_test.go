package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"react", "react", 0},
		{"react", "react.js", 28},
		{"react", "python", 100},
		{"kitten", "sitting", 42},
		{"", "", 0},
		{"", "abc", 100},
		{"Golang", "golang", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, LevenshteinDifference(tt.a, tt.b))
			assert.Equal(t, tt.want, LevenshteinDifference(tt.b, tt.a))
		})
	}
}

func TestLevenshteinDifference_Threshold(t *testing.T) {
	threshold := DefaultOptions().FuzzyThreshold
	assert.LessOrEqual(t, LevenshteinDifference("react", "react.js"), threshold)
	assert.Greater(t, LevenshteinDifference("react", "python"), threshold)
}
