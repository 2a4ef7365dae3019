package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenCounter_FallbackEstimate(t *testing.T) {
	c := NewTokenCounter()
	// A cached nil encoding forces the character estimate without loading BPE files.
	c.encodings["offline"] = nil

	assert.Equal(t, 0, c.Count("offline", ""))
	assert.Equal(t, 1, c.Count("offline", "abc"))
	assert.Equal(t, 3, c.Count("offline", "0123456789"))

	usage := c.EstimateUsage("offline", []ChatMessage{
		{Role: RoleSystem, Content: "0123456789"},
		{Role: RoleUser, Content: "hi"},
	}, "12345678")
	// 3 priming + (3 + 2 + 3) + (3 + 1 + 1)
	assert.Equal(t, 16, usage.PromptTokens)
	assert.Equal(t, 2, usage.CompletionTokens)
	assert.Equal(t, 18, usage.TotalTokens)
}

func TestApproxTokenCounter(t *testing.T) {
	c := NewApproxTokenCounter()
	assert.Equal(t, 3, c.Count("gpt-4o-mini", "0123456789"))
	assert.Empty(t, c.encodings)
}
