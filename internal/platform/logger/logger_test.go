package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs(t *testing.T) {
	in := []interface{}{"tool", "contactSamuel", "email", "a@b.co", "api_key", "sk-123", "dangling"}
	out := sanitizeKVs(in)

	assert.Equal(t, []interface{}{
		"tool", "contactSamuel",
		"email", "[REDACTED]",
		"api_key", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.With("request_id", "x").Info("hello", "k", 1)
		l.Sync()
	})
}
