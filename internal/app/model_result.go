package app

import (
	"regexp"
	"strings"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
)

// modelResult is what one routing call produced: textResult, toolCallResult or errorResult.
type modelResult interface {
	isModelResult()
}

type textResult struct {
	text  string
	usage ai.Usage
}

type toolCallResult struct {
	message ai.ChatMessage
	calls   []ai.ToolCall
	usage   ai.Usage
}

type errorResult struct {
	err error
}

func (textResult) isModelResult()     {}
func (toolCallResult) isModelResult() {}
func (errorResult) isModelResult()    {}

func classify(c *ai.Completion, err error) modelResult {
	if err != nil {
		return errorResult{err: err}
	}
	if c == nil {
		return errorResult{err: ai.ErrEmptyChoices}
	}
	if len(c.Message.ToolCalls) > 0 {
		msg := c.Message
		msg.Role = ai.RoleAssistant
		return toolCallResult{message: msg, calls: msg.ToolCalls, usage: c.Usage}
	}
	return textResult{text: c.Message.Content, usage: c.Usage}
}

var (
	toolNamePattern = `(?:contactSamuel|getResume|redirectToPage|askClarification|askQuestion)`

	leakedCallPattern = regexp.MustCompile(`(?i)^\W{0,3}(?:functions\.)?` + toolNamePattern + `\s*\(`)
	leakedJSONPattern = regexp.MustCompile(`"(?:name|tool|function)"\s*:\s*"` + toolNamePattern + `"`)
	leakedTagPattern  = regexp.MustCompile(`(?i)</?(?:tool_call|function_call|tool_use)>`)
)

// looksLikeToolCall reports whether terminal text is a tool invocation the model
// wrote out instead of calling.
func looksLikeToolCall(text string) bool {
	text = strings.TrimSpace(ai.StripCodeFences(text))
	if text == "" {
		return false
	}
	return leakedCallPattern.MatchString(text) ||
		leakedJSONPattern.MatchString(text) ||
		leakedTagPattern.MatchString(text)
}
