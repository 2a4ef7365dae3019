package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
)

func TestChat_PlainTextIsTerminal(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{textCompletion("Hi there!", 120)}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "hello"})

	assert.Equal(t, "Hi there!", reply.Message)
	assert.False(t, reply.Error)
	assert.False(t, reply.TokenLimitReached)
	assert.Equal(t, 1, f.llm.calls())
	assert.Equal(t, "router-model", f.llm.requests[0].Model)
	assert.Equal(t, "auto", f.llm.requests[0].ToolChoice)
	assert.Len(t, f.llm.requests[0].Tools, 5)
}

func TestChat_AskQuestionAnswersFromContext(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolAskQuestion, `{"question":"What languages does Samuel use?"}`),
		textCompletion("Samuel writes Go.", 400),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{
		Message: "languages?",
		History: []ConversationTurn{{Role: "user", Content: "Tell me about Samuel"}},
	})

	assert.Equal(t, "Samuel writes Go.", reply.Message)
	require.Equal(t, 2, f.llm.calls())
	answer := f.llm.requests[1]
	assert.Equal(t, "answer-model", answer.Model)
	assert.Empty(t, answer.Tools)
	assert.Equal(t, 300, answer.MaxTokens)
	assert.Contains(t, answer.Messages[0].Content, "Samuel writes Go.")

	require.Len(t, f.knowledge.queries, 1)
	assert.Contains(t, f.knowledge.queries[0], "languages")
	assert.Contains(t, f.knowledge.queries[0], "samuel")
	assert.Empty(t, f.knowledge.gaps)
}

func TestChat_EmptyContextRecordsGapOnce(t *testing.T) {
	f := newChatFixture()
	f.knowledge.sel = rag.Selection{}
	f.llm.responses = []*ai.Completion{toolCompletion(ToolAskQuestion, `{"question":"Does Samuel play chess?"}`)}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "chess?"})

	assert.Equal(t, msgNoInformation, reply.Message)
	assert.False(t, reply.Error)
	require.Len(t, f.knowledge.gaps, 1)
	assert.Contains(t, f.knowledge.gaps[0], "chess")
	assert.Equal(t, 1, f.llm.calls(), "the answer model must not be called without context")
}

func TestChat_IterationBound(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{toolCompletion(ToolGetResume, "")}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "resume please"})

	assert.Equal(t, msgTooManyActions, reply.Message)
	assert.True(t, reply.DisplayResume)
	assert.Equal(t, 6, f.llm.calls())
}

func TestChat_ContactWithoutEmailIsSoftFailure(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolContact, `{"message":"hire me"}`),
		textCompletion("What is your email address?", 100),
	}

	var reply ChatReply
	require.NotPanics(t, func() {
		reply = f.svc.Chat(context.Background(), ChatInput{Message: "please contact me"})
	})

	assert.Equal(t, "What is your email address?", reply.Message)
	assert.False(t, reply.Error)
	assert.Empty(t, f.contacts.payloads)

	require.Equal(t, 2, f.llm.calls())
	msgs := f.llm.requests[1].Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, ai.RoleTool, last.Role)
	assert.Equal(t, "call_"+ToolContact, last.ToolCallID)
	assert.Contains(t, last.Content, "no email address")
	assert.Len(t, msgs[len(msgs)-2].ToolCalls, 1)
}

func TestChat_ContactPublishesRequest(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolContact, `{"email":" Visitor <visitor@example.com> ","message":"Let's talk"}`),
		textCompletion("Done! Samuel will be in touch.", 100),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "contact me at visitor@example.com"})

	assert.Equal(t, "Done! Samuel will be in touch.", reply.Message)
	require.Len(t, f.contacts.payloads, 1)
	req, ok := f.contacts.payloads[0].(model.ContactRequest)
	require.True(t, ok)
	assert.Equal(t, "visitor@example.com", req.Email)
	require.NotNil(t, req.Message)
	assert.Equal(t, "Let's talk", *req.Message)
}

func TestChat_ContactPublishFailureIsFedBack(t *testing.T) {
	f := newChatFixture()
	f.contacts.err = errors.New("broker down")
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolContact, `{"email":"visitor@example.com"}`),
		textCompletion("Sorry, please use the contact page.", 100),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "contact me"})

	assert.Equal(t, "Sorry, please use the contact page.", reply.Message)
	assert.False(t, reply.Error)
	msgs := f.llm.requests[1].Messages
	assert.Contains(t, msgs[len(msgs)-1].Content, "could not be delivered")
}

func TestChat_RedirectCanonicalisesPage(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolRedirectToPage, `{"page":"contact"}`),
		textCompletion("Taking you to the contact page.", 100),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "how do I reach Samuel?"})

	assert.Equal(t, "Contact", reply.RedirectToPage)
	assert.Equal(t, "Taking you to the contact page.", reply.Message)
	require.Equal(t, 2, f.llm.calls())
	assert.Equal(t, "answer-model", f.llm.requests[1].Model)
}

func TestChat_RedirectUnknownPageContinuesRouting(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolRedirectToPage, `{"page":"Blog"}`),
		textCompletion("There is no blog page.", 100),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "open the blog"})

	assert.Empty(t, reply.RedirectToPage)
	assert.Equal(t, "There is no blog page.", reply.Message)
	assert.Equal(t, "router-model", f.llm.requests[1].Model)
}

func TestChat_ClarificationReturnedVerbatim(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolAskClarification, `{"question":"Which project do you mean?"}`),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "tell me about it"})

	assert.Equal(t, "Which project do you mean?", reply.Message)
	assert.Equal(t, 1, f.llm.calls())
}

func TestChat_UnknownToolIsFedBack(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion("orderPizza", `{}`),
		textCompletion("I can't order pizza.", 100),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "pizza"})

	assert.Equal(t, "I can't order pizza.", reply.Message)
	msgs := f.llm.requests[1].Messages
	assert.Contains(t, msgs[len(msgs)-1].Content, "Unknown tool")
}

func TestChat_LeakedToolCallFallsBackToAnswer(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		textCompletion(`askQuestion({"question": "What does Samuel do?"})`, 100),
		textCompletion("Samuel writes Go.", 100),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "what does Samuel do?"})

	assert.Equal(t, "Samuel writes Go.", reply.Message)
	require.Equal(t, 2, f.llm.calls())
	assert.Equal(t, "answer-model", f.llm.requests[1].Model)
}

func TestChat_BlankTextIsNotSure(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{textCompletion("   ", 10)}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "hmm"})

	assert.Equal(t, msgNotSure, reply.Message)
}

func TestChat_RoutingErrorSetsFlag(t *testing.T) {
	f := newChatFixture()
	f.llm.err = errors.New("503")

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "hello"})

	assert.True(t, reply.Error)
	assert.Equal(t, msgRoutingError, reply.Message)
	assert.Equal(t, 1, f.llm.calls(), "no retry")
}

func TestChat_RetrieveErrorSetsFlag(t *testing.T) {
	f := newChatFixture()
	f.knowledge.err = errors.New("db down")
	f.llm.responses = []*ai.Completion{toolCompletion(ToolAskQuestion, `{"question":"x"}`)}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "x"})

	assert.True(t, reply.Error)
	assert.Equal(t, msgAnswerError, reply.Message)
}

func TestChat_TokenLimitFlag(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{
		toolCompletion(ToolAskQuestion, `{"question":"x"}`),
		textCompletion("answer", 2501),
	}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "x"})
	assert.True(t, reply.TokenLimitReached)

	f = newChatFixture()
	f.llm.responses = []*ai.Completion{textCompletion("hi", 2500)}
	reply = f.svc.Chat(context.Background(), ChatInput{Message: "x"})
	assert.False(t, reply.TokenLimitReached)
}

func TestChat_EmptyMessageSkipsModel(t *testing.T) {
	f := newChatFixture()

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "  "})

	assert.Equal(t, msgNotSure, reply.Message)
	assert.Zero(t, f.llm.calls())
}

func TestChat_PublishesExchange(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{textCompletion("Hi!", 10)}
	tracking := uuid.New()

	f.svc.Chat(context.Background(), ChatInput{
		Message:           "hello",
		History:           []ConversationTurn{{Role: "assistant", Content: "Welcome"}},
		SessionTrackingID: &tracking,
	})

	require.Len(t, f.exchanges.payloads, 1)
	ex, ok := f.exchanges.payloads[0].(model.ChatExchange)
	require.True(t, ok)
	assert.Equal(t, "hello", ex.Message)
	assert.Equal(t, "Hi!", ex.Response)
	assert.Equal(t, "assistant: Welcome", ex.History)
	assert.Equal(t, &tracking, ex.SessionTrackingID)
	assert.False(t, ex.Error)
}

func TestChat_ExchangePublishFailureIsSwallowed(t *testing.T) {
	f := newChatFixture()
	f.exchanges.err = errors.New("broker down")
	f.llm.responses = []*ai.Completion{textCompletion("Hi!", 10)}

	reply := f.svc.Chat(context.Background(), ChatInput{Message: "hello"})

	assert.Equal(t, "Hi!", reply.Message)
	assert.False(t, reply.Error)
}

func collect(events *[]StreamEvent) func(StreamEvent) error {
	return func(ev StreamEvent) error {
		*events = append(*events, ev)
		return nil
	}
}

func TestStreamChat_ForwardsTokensThenMetadata(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{toolCompletion(ToolRedirectToPage, `{"page":"resume"}`)}
	f.llm.chunks = []string{"Here ", "is ", "the resume."}
	f.llm.streamUsage = ai.Usage{TotalTokens: 3000}

	var events []StreamEvent
	err := f.svc.StreamChat(context.Background(), ChatInput{Message: "show me the resume page"}, collect(&events))
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, "Here ", events[0].Token)
	assert.Equal(t, "the resume.", events[2].Token)
	meta := events[3].Metadata
	require.NotNil(t, meta)
	assert.Equal(t, "Resume", meta.RedirectToPage)
	assert.True(t, meta.TokenLimitReached)
	assert.False(t, meta.Error)

	require.Len(t, f.exchanges.payloads, 1)
	assert.Equal(t, "Here is the resume.", f.exchanges.payloads[0].(model.ChatExchange).Response)
}

func TestStreamChat_TerminalTextIsSingleToken(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{textCompletion("Hello!", 10)}

	var events []StreamEvent
	require.NoError(t, f.svc.StreamChat(context.Background(), ChatInput{Message: "hi"}, collect(&events)))

	require.Len(t, events, 2)
	assert.Equal(t, "Hello!", events[0].Token)
	require.NotNil(t, events[1].Metadata)
	assert.Empty(t, f.llm.streamed)
}

func TestStreamChat_CancelledStopsForwarding(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{toolCompletion(ToolAskQuestion, `{"question":"x"}`)}
	f.llm.chunks = []string{"one ", "two ", "three"}

	ctx, cancel := context.WithCancel(context.Background())
	var tokens []string
	err := f.svc.StreamChat(ctx, ChatInput{Message: "x"}, func(ev StreamEvent) error {
		if ev.Metadata != nil {
			t.Fatal("metadata must not be sent after cancellation")
		}
		tokens = append(tokens, ev.Token)
		cancel()
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"one "}, tokens)
}

func TestStreamChat_ClientGoneIsNotAnError(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{toolCompletion(ToolAskQuestion, `{"question":"x"}`)}
	f.llm.chunks = []string{"one ", "two "}

	calls := 0
	err := f.svc.StreamChat(context.Background(), ChatInput{Message: "x"}, func(StreamEvent) error {
		calls++
		return errors.New("broken pipe")
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestStreamChat_StreamErrorSendsApology(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{toolCompletion(ToolAskQuestion, `{"question":"x"}`)}
	f.llm.streamErr = errors.New("upstream reset")

	var events []StreamEvent
	require.NoError(t, f.svc.StreamChat(context.Background(), ChatInput{Message: "x"}, collect(&events)))

	require.Len(t, events, 2)
	assert.Equal(t, msgAnswerError, events[0].Token)
	require.NotNil(t, events[1].Metadata)
	assert.True(t, events[1].Metadata.Error)
}

func TestStreamChat_EstimatesUsageWhenMissing(t *testing.T) {
	f := newChatFixture()
	f.llm.responses = []*ai.Completion{toolCompletion(ToolAskQuestion, `{"question":"x"}`)}
	f.llm.chunks = []string{"short"}

	var events []StreamEvent
	require.NoError(t, f.svc.StreamChat(context.Background(), ChatInput{Message: "x"}, collect(&events)))

	require.NotNil(t, events[len(events)-1].Metadata)
	assert.False(t, events[len(events)-1].Metadata.TokenLimitReached)
}
