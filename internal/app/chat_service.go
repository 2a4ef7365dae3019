package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
	"github.com/SamOhrenberg/AboutSamuel/internal/config"
	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/observability"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
)

var errStreamWrite = errors.New("stream write failed")

type chatState int

const (
	stateRouting chatState = iota
	stateToolExecuting
	stateStreaming
	stateTerminal
)

func (s chatState) String() string {
	switch s {
	case stateRouting:
		return "routing"
	case stateToolExecuting:
		return "tool_executing"
	case stateStreaming:
		return "streaming"
	case stateTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("chatState(%d)", int(s))
	}
}

// chatTransitions lists every legal state change of a turn. Streaming means an
// answer request has been prepared and only needs to be sent.
var chatTransitions = map[chatState]map[chatState]bool{
	stateRouting:       {stateToolExecuting: true, stateStreaming: true, stateTerminal: true},
	stateToolExecuting: {stateRouting: true, stateStreaming: true, stateTerminal: true},
	stateStreaming:     {stateTerminal: true},
}

type turn struct {
	input      ChatInput
	state      chatState
	messages   []ai.ChatMessage
	pending    []ai.ToolCall
	iterations int
	answer     *ai.CompletionRequest
	reply      ChatReply
	outcome    string
}

func (t *turn) moveTo(next chatState) {
	if !chatTransitions[t.state][next] {
		panic(fmt.Sprintf("illegal chat transition %s -> %s", t.state, next))
	}
	t.state = next
}

func (t *turn) finish(message, outcome string) {
	t.reply.Message = message
	t.outcome = outcome
	t.moveTo(stateTerminal)
}

// followUp ends the tool phase: either a verbatim reply or an answer produced
// through retrieval.
type followUp struct {
	verbatim string
	question string
}

type toolHandler func(ctx context.Context, t *turn, args string) (string, *followUp)

type ChatService struct {
	llm       ChatCompleter
	knowledge KnowledgeSource
	exchanges Publisher
	contacts  Publisher
	tokens    *ai.TokenCounter
	prompts   Prompts
	tools     []ai.Tool
	handlers  map[string]toolHandler
	cfg       config.ChatConfig
	llmCfg    config.LLMConfig
	log       *logger.Logger
	now       func() time.Time
}

func NewChatService(
	llm ChatCompleter,
	knowledge KnowledgeSource,
	exchanges Publisher,
	contacts Publisher,
	cfg *config.Config,
	log *logger.Logger,
) *ChatService {
	s := &ChatService{
		llm:       llm,
		knowledge: knowledge,
		exchanges: exchanges,
		contacts:  contacts,
		tokens:    ai.NewTokenCounter(),
		prompts:   NewPrompts(cfg.Chat),
		tools:     toolDeclarations(cfg.Chat.OwnerName),
		cfg:       cfg.Chat,
		llmCfg:    cfg.LLM,
		log:       log.With("component", "chat"),
		now:       time.Now,
	}
	s.handlers = map[string]toolHandler{
		ToolContact:          s.handleContact,
		ToolGetResume:        s.handleGetResume,
		ToolRedirectToPage:   s.handleRedirect,
		ToolAskClarification: s.handleAskClarification,
		ToolAskQuestion:      s.handleAskQuestion,
	}
	return s
}

// Chat runs one turn to completion. Failures are reported through the reply's
// Error flag, never as a Go error.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) ChatReply {
	start := s.now()
	t := s.route(ctx, input)
	if t.state == stateStreaming {
		s.completeAnswer(ctx, t)
	}
	s.record(ctx, t, start)
	return t.reply
}

type StreamEvent struct {
	Token    string
	Metadata *ChatReply
}

// StreamChat routes the turn, then forwards the answer token by token. A
// cancelled context or a client that stopped reading ends the stream quietly.
func (s *ChatService) StreamChat(ctx context.Context, input ChatInput, emit func(StreamEvent) error) error {
	start := s.now()
	t := s.route(ctx, input)
	defer func() { s.record(ctx, t, start) }()

	if t.state == stateTerminal {
		if err := emit(StreamEvent{Token: t.reply.Message}); err != nil {
			s.log.Debug("stream client went away", "error", err)
			return nil
		}
		return s.emitMetadata(t, emit)
	}

	var streamed strings.Builder
	res, err := s.llm.StreamComplete(ctx, *t.answer, func(chunk string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		streamed.WriteString(chunk)
		if err := emit(StreamEvent{Token: chunk}); err != nil {
			return fmt.Errorf("%w: %v", errStreamWrite, err)
		}
		return nil
	})

	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, errStreamWrite):
		s.log.Info("chat stream cancelled", "streamed_chars", streamed.Len())
		t.finish(streamed.String(), "cancelled")
		return nil
	case err != nil:
		observability.ObserveLLM("stream", err)
		s.log.Error("stream answer failed", "error", err)
		t.reply.Error = true
		if streamed.Len() > 0 {
			t.finish(streamed.String(), "error")
		} else {
			t.finish(msgAnswerError, "error")
			if err := emit(StreamEvent{Token: msgAnswerError}); err != nil {
				return nil
			}
		}
		return s.emitMetadata(t, emit)
	}
	observability.ObserveLLM("stream", nil)

	usage := res.Usage
	if usage.TotalTokens == 0 {
		usage = s.tokens.EstimateUsage(t.answer.Model, t.answer.Messages, res.Text)
	}
	s.observeUsage(t, usage)

	if strings.TrimSpace(res.Text) == "" {
		t.finish(msgNotSure, "not_sure")
		if err := emit(StreamEvent{Token: msgNotSure}); err != nil {
			return nil
		}
	} else {
		t.finish(res.Text, "answered")
	}
	return s.emitMetadata(t, emit)
}

func (s *ChatService) emitMetadata(t *turn, emit func(StreamEvent) error) error {
	meta := t.reply
	if err := emit(StreamEvent{Metadata: &meta}); err != nil {
		s.log.Debug("stream client went away before metadata", "error", err)
	}
	return nil
}

// route drives the turn until it is terminal or holds a prepared answer request.
func (s *ChatService) route(ctx context.Context, input ChatInput) *turn {
	input.Message = strings.TrimSpace(input.Message)
	t := &turn{
		input:    input,
		state:    stateRouting,
		messages: transcript(input.History, input.Message),
	}
	if input.Message == "" {
		t.finish(msgNotSure, "empty")
		return t
	}

	for {
		switch t.state {
		case stateRouting:
			s.routeStep(ctx, t)
		case stateToolExecuting:
			s.executeTools(ctx, t)
		default:
			return t
		}
	}
}

func (s *ChatService) routeStep(ctx context.Context, t *turn) {
	if t.iterations >= s.cfg.MaxToolIterations {
		s.log.Warn("tool iteration limit reached", "iterations", t.iterations)
		t.finish(msgTooManyActions, "iteration_limit")
		return
	}
	t.iterations++

	messages := make([]ai.ChatMessage, 0, len(t.messages)+1)
	messages = append(messages, ai.ChatMessage{Role: ai.RoleSystem, Content: s.prompts.Routing()})
	messages = append(messages, t.messages...)

	completion, err := s.llm.Complete(ctx, ai.CompletionRequest{
		Model:      s.llmCfg.RoutingModel,
		Messages:   messages,
		Tools:      s.tools,
		ToolChoice: "auto",
		MaxTokens:  s.cfg.RoutingMaxTokens,
	})
	observability.ObserveLLM("routing", err)

	switch r := classify(completion, err).(type) {
	case errorResult:
		s.log.Error("routing request failed", "error", r.err, "iteration", t.iterations)
		t.reply.Error = true
		t.finish(msgRoutingError, "error")
	case textResult:
		s.observeUsage(t, r.usage)
		text := strings.TrimSpace(r.text)
		switch {
		case looksLikeToolCall(text):
			s.log.Warn("model leaked a tool call as text, answering from knowledge base")
			s.prepareAnswer(ctx, t, "")
		case text == "":
			t.finish(msgNotSure, "not_sure")
		default:
			t.finish(text, "text")
		}
	case toolCallResult:
		s.observeUsage(t, r.usage)
		t.messages = append(t.messages, r.message)
		t.pending = r.calls
		t.moveTo(stateToolExecuting)
	}
}

// executeTools runs every requested call and feeds the results back. The first
// call that ends the tool phase wins; later ones still run for their side effects.
func (s *ChatService) executeTools(ctx context.Context, t *turn) {
	calls := t.pending
	t.pending = nil

	var next *followUp
	for _, call := range calls {
		name := call.Function.Name
		handler, ok := s.handlers[name]
		var result string
		var fu *followUp
		if ok {
			observability.ToolCallsTotal.WithLabelValues(name).Inc()
			s.log.Info("tool selected", "tool", name)
			result, fu = handler(ctx, t, call.Function.Arguments)
		} else {
			observability.ToolCallsTotal.WithLabelValues("unknown").Inc()
			s.log.Warn("unrecognized tool call", "tool", name)
			result = fmt.Sprintf("Unknown tool %q. Use one of the declared tools or answer the user directly.", name)
		}
		if next == nil {
			next = fu
		}
		t.messages = append(t.messages, ai.ChatMessage{
			Role:       ai.RoleTool,
			ToolCallID: call.ID,
			Content:    result,
		})
	}

	switch {
	case next == nil:
		t.moveTo(stateRouting)
	case next.verbatim != "":
		t.finish(next.verbatim, "clarification")
	default:
		s.prepareAnswer(ctx, t, next.question)
	}
}

func (s *ChatService) handleContact(ctx context.Context, _ *turn, raw string) (string, *followUp) {
	var args contactArgs
	if err := decodeArgs(raw, &args); err != nil {
		s.log.Warn("contact tool arguments invalid", "error", err)
		return "Error: the tool arguments could not be read. Ask the user for their email address and try again.", nil
	}
	email := strings.TrimSpace(args.Email)
	if email == "" {
		return "Error: no email address was provided. Ask the user for their email address before sending a contact request.", nil
	}
	req, err := newContactRequest(email, args.Message, s.now())
	if err != nil {
		return fmt.Sprintf("Error: %q is not a valid email address. Ask the user to check it.", email), nil
	}
	if err := s.publish(ctx, s.contacts, "contact", req); err != nil {
		s.log.Error("publish contact request failed", "error", err)
		return "Error: the contact request could not be delivered. Suggest the user try the Contact page instead.", nil
	}
	return fmt.Sprintf("Success: the contact request was received and %s will follow up by email.", s.prompts.firstName()), nil
}

func (s *ChatService) handleGetResume(_ context.Context, t *turn, _ string) (string, *followUp) {
	t.reply.DisplayResume = true
	return "The resume is now displayed to the user. Tell them briefly.", nil
}

func (s *ChatService) handleRedirect(_ context.Context, t *turn, raw string) (string, *followUp) {
	var args redirectArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "Error: the tool arguments could not be read.", nil
	}
	page, ok := canonicalPage(args.Page)
	if !ok {
		return fmt.Sprintf("Error: unknown page %q. Valid pages are %s.", args.Page, strings.Join(redirectPages, ", ")), nil
	}
	t.reply.RedirectToPage = page
	return fmt.Sprintf("The user is being redirected to the %s page.", page), &followUp{}
}

func (s *ChatService) handleAskClarification(_ context.Context, _ *turn, raw string) (string, *followUp) {
	var args questionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "Error: the tool arguments could not be read.", nil
	}
	question := strings.TrimSpace(args.Question)
	if question == "" {
		return "Error: the clarifying question was empty.", nil
	}
	return "The clarifying question was shown to the user.", &followUp{verbatim: question}
}

func (s *ChatService) handleAskQuestion(_ context.Context, _ *turn, raw string) (string, *followUp) {
	var args questionArgs
	if err := decodeArgs(raw, &args); err != nil {
		s.log.Warn("question tool arguments invalid, using the visitor's message", "error", err)
	}
	return "Answering from the knowledge base.", &followUp{question: args.Question}
}

// prepareAnswer retrieves context for everything the visitor asked and either
// prepares the answer request or ends the turn with the no-information reply.
func (s *ChatService) prepareAnswer(ctx context.Context, t *turn, question string) {
	tokens := rag.Tokenize(question + " " + userText(t.input.History, t.input.Message))

	sel, err := s.knowledge.Retrieve(ctx, tokens)
	if err != nil {
		s.log.Error("retrieve answer context failed", "error", err)
		t.reply.Error = true
		t.finish(msgAnswerError, "error")
		return
	}
	if sel.Empty() {
		if err := s.knowledge.RecordGap(ctx, tokens); err != nil {
			s.log.Error("record information gap failed", "error", err)
		}
		t.finish(msgNoInformation, "gap")
		return
	}

	messages := make([]ai.ChatMessage, 0, len(t.input.History)+2)
	messages = append(messages, ai.ChatMessage{Role: ai.RoleSystem, Content: s.prompts.Answer(sel.Context)})
	messages = append(messages, transcript(t.input.History, t.input.Message)...)
	t.answer = &ai.CompletionRequest{
		Model:     s.llmCfg.AnswerModel,
		Messages:  messages,
		MaxTokens: s.cfg.AnswerMaxTokens,
	}
	t.moveTo(stateStreaming)
}

func (s *ChatService) completeAnswer(ctx context.Context, t *turn) {
	completion, err := s.llm.Complete(ctx, *t.answer)
	observability.ObserveLLM("answer", err)
	if err != nil {
		s.log.Error("answer request failed", "error", err)
		t.reply.Error = true
		t.finish(msgAnswerError, "error")
		return
	}
	s.observeUsage(t, completion.Usage)

	text := strings.TrimSpace(completion.Message.Content)
	if text == "" {
		t.finish(msgNotSure, "not_sure")
		return
	}
	t.finish(text, "answered")
}

func (s *ChatService) observeUsage(t *turn, usage ai.Usage) {
	if usage.TotalTokens > s.cfg.TokenLimit {
		t.reply.TokenLimitReached = true
	}
}

// record publishes the exchange for asynchronous persistence. Failures are
// logged and never reach the visitor.
func (s *ChatService) record(ctx context.Context, t *turn, start time.Time) {
	took := s.now().Sub(start)
	observability.ChatTurnsTotal.WithLabelValues(t.outcome).Inc()
	observability.ChatTurnDuration.Observe(took.Seconds())
	s.log.Info("chat turn finished",
		"outcome", t.outcome,
		"iterations", t.iterations,
		"took_ms", took.Milliseconds(),
		"token_limit_reached", t.reply.TokenLimitReached,
	)

	exchange := model.ChatExchange{
		ID:                uuid.New(),
		History:           flattenHistory(t.input.History),
		Message:           t.input.Message,
		Response:          t.reply.Message,
		ReceivedAt:        start.UTC(),
		ResponseTookMs:    took.Milliseconds(),
		TokenLimitReached: t.reply.TokenLimitReached,
		Error:             t.reply.Error,
		SessionTrackingID: t.input.SessionTrackingID,
	}
	if err := s.publish(ctx, s.exchanges, "chat_exchange", exchange); err != nil {
		s.log.Error("publish chat exchange failed", "error", err)
	}
}

// publish is detached from request cancellation.
func (s *ChatService) publish(ctx context.Context, p Publisher, queue string, v interface{}) error {
	if p == nil {
		return fmt.Errorf("no publisher configured for %s", queue)
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	err := p.Publish(pubCtx, v)
	observability.ObserveQueue(queue, "publish", err == nil)
	return err
}
