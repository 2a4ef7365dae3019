package ai

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates token usage for providers that do not report it on
// streamed responses. Encodings are loaded lazily and cached per model.
type TokenCounter struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
	approx    bool
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// NewApproxTokenCounter never loads BPE files and always uses the character estimate.
func NewApproxTokenCounter() *TokenCounter {
	return &TokenCounter{encodings: make(map[string]*tiktoken.Tiktoken), approx: true}
}

// Count returns the token count of text, or a four-characters-per-token estimate
// when no encoding can be loaded.
func (c *TokenCounter) Count(model, text string) int {
	if text == "" {
		return 0
	}
	enc := c.encoding(model)
	if enc == nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateUsage follows the chat format overhead: three tokens per message plus
// three priming the assistant reply.
func (c *TokenCounter) EstimateUsage(model string, messages []ChatMessage, completion string) Usage {
	prompt := 3
	for _, m := range messages {
		prompt += 3 + c.Count(model, m.Role) + c.Count(model, m.Content)
	}
	out := c.Count(model, completion)
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: out,
		TotalTokens:      prompt + out,
	}
}

func (c *TokenCounter) encoding(model string) *tiktoken.Tiktoken {
	if c.approx {
		return nil
	}
	key := strings.ToLower(model)

	c.mu.RLock()
	enc, ok := c.encodings[key]
	c.mu.RUnlock()
	if ok {
		return enc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodings[key]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(key)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			enc = nil
		}
	}
	c.encodings[key] = enc
	return enc
}
