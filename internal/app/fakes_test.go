package app

import (
	"context"
	"errors"
	"sync"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
	"github.com/SamOhrenberg/AboutSamuel/internal/config"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
)

type fakeLLM struct {
	mu        sync.Mutex
	responses []*ai.Completion
	err       error
	requests  []ai.CompletionRequest

	chunks      []string
	streamUsage ai.Usage
	streamErr   error
	streamed    []ai.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, in ai.CompletionRequest) (*ai.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, in)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	next := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return next, nil
}

func (f *fakeLLM) StreamComplete(ctx context.Context, in ai.CompletionRequest, onChunk func(string) error) (*ai.StreamResult, error) {
	f.mu.Lock()
	f.streamed = append(f.streamed, in)
	f.mu.Unlock()

	res := &ai.StreamResult{}
	for _, chunk := range f.chunks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := onChunk(chunk); err != nil {
			return res, err
		}
		res.Text += chunk
	}
	if f.streamErr != nil {
		return res, f.streamErr
	}
	res.Usage = f.streamUsage
	return res, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeKnowledge struct {
	sel     rag.Selection
	err     error
	queries [][]string
	gaps    [][]string
}

func (f *fakeKnowledge) Retrieve(_ context.Context, tokens []string) (rag.Selection, error) {
	f.queries = append(f.queries, tokens)
	return f.sel, f.err
}

func (f *fakeKnowledge) RecordGap(_ context.Context, tokens []string) error {
	f.gaps = append(f.gaps, tokens)
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	err      error
	payloads []interface{}
}

func (f *fakePublisher) Publish(_ context.Context, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, v)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			RoutingModel: "router-model",
			AnswerModel:  "answer-model",
		},
		Chat: config.ChatConfig{
			OwnerName:          "Samuel Ohrenberg",
			SiteURL:            "https://aboutsamuel.com/",
			MaxToolIterations:  6,
			TokenLimit:         2500,
			RoutingMaxTokens:   1000,
			AnswerMaxTokens:    300,
			ResumeMaxTokens:    8192,
			SmallPoolThreshold: 3,
			TopN:               5,
			MatchWeight:        60,
			MaxJitter:          10,
			FuzzyThreshold:     30,
			MinFuzzyLength:     4,
		},
	}
}

func textCompletion(content string, total int) *ai.Completion {
	return &ai.Completion{
		Message: ai.ChatMessage{Role: ai.RoleAssistant, Content: content},
		Usage:   ai.Usage{TotalTokens: total},
	}
}

func toolCompletion(name, args string) *ai.Completion {
	return &ai.Completion{
		Message: ai.ChatMessage{
			Role: ai.RoleAssistant,
			ToolCalls: []ai.ToolCall{{
				ID:       "call_" + name,
				Type:     "function",
				Function: ai.FunctionCall{Name: name, Arguments: args},
			}},
		},
		Usage: ai.Usage{TotalTokens: 100},
	}
}

func someContext() rag.Selection {
	return rag.Selection{
		Candidates: []rag.ScoredCandidate{{Candidate: rag.Candidate{ID: "1", Text: "Samuel writes Go."}}},
		Context:    "Samuel writes Go.",
	}
}

type chatFixture struct {
	llm       *fakeLLM
	knowledge *fakeKnowledge
	exchanges *fakePublisher
	contacts  *fakePublisher
	svc       *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		llm:       &fakeLLM{},
		knowledge: &fakeKnowledge{sel: someContext()},
		exchanges: &fakePublisher{},
		contacts:  &fakePublisher{},
	}
	f.svc = NewChatService(f.llm, f.knowledge, f.exchanges, f.contacts, testConfig(), logger.NewNop())
	f.svc.tokens = ai.NewApproxTokenCounter()
	return f
}
