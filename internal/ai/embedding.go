package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// EmbedBatch returns one vector per input text, in input order. Blank inputs are rejected.
func (c *OpenAICompatibleClient) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = strings.TrimSpace(t)
		if inputs[i] == "" {
			return nil, fmt.Errorf("embedding input %d is empty", i)
		}
	}

	resp, err := c.post(ctx, "/embeddings", map[string]interface{}{
		"model": model,
		"input": inputs,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding response status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}

	var parsed struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding json failed: %w", err)
	}
	if len(parsed.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(parsed.Data), len(inputs))
	}

	result := make([][]float32, len(inputs))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(result) || len(d.Embedding) == 0 {
			return nil, fmt.Errorf("embedding response has invalid entry at index %d", d.Index)
		}
		result[d.Index] = d.Embedding
	}
	return result, nil
}
