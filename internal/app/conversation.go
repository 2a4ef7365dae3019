package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
)

// Canned replies. The chat path never returns an error to the caller; every
// failure ends the turn with one of these.
const (
	msgRoutingError   = "I'm sorry, I encountered an error. Please try again."
	msgAnswerError    = "I encountered an error while generating a response. Please try again."
	msgNotSure        = "I'm sorry, I wasn't sure how to handle that. Could you rephrase your question?"
	msgNoInformation  = "I'm sorry, I don't have information about that topic yet. I've made a note of the gap and will work to get it added!"
	msgTooManyActions = "I'm sorry, I couldn't finish that request. Could you try asking it a different way?"
)

type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatInput struct {
	Message           string
	History           []ConversationTurn
	SessionTrackingID *uuid.UUID
}

type ChatReply struct {
	Message           string `json:"message"`
	DisplayResume     bool   `json:"displayResume"`
	RedirectToPage    string `json:"redirectToPage,omitempty"`
	TokenLimitReached bool   `json:"tokenLimitReached"`
	Error             bool   `json:"error"`
}

// ChatCompleter is the subset of the chat-completion client the services use.
type ChatCompleter interface {
	Complete(ctx context.Context, in ai.CompletionRequest) (*ai.Completion, error)
	StreamComplete(ctx context.Context, in ai.CompletionRequest, onChunk func(chunk string) error) (*ai.StreamResult, error)
}

// Publisher hands a payload to a durable queue.
type Publisher interface {
	Publish(ctx context.Context, v interface{}) error
}

// KnowledgeSource retrieves answer context and records unanswered topics.
type KnowledgeSource interface {
	Retrieve(ctx context.Context, queryTokens []string) (rag.Selection, error)
	RecordGap(ctx context.Context, queryTokens []string) error
}

// transcript converts prior turns plus the new message into chat messages.
// Unknown roles are treated as the visitor speaking.
func transcript(history []ConversationTurn, message string) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(history)+1)
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		role := ai.RoleUser
		if strings.EqualFold(turn.Role, ai.RoleAssistant) {
			role = ai.RoleAssistant
		}
		out = append(out, ai.ChatMessage{Role: role, Content: content})
	}
	return append(out, ai.ChatMessage{Role: ai.RoleUser, Content: message})
}

// userText concatenates everything the visitor has said in the conversation.
func userText(history []ConversationTurn, message string) string {
	var b strings.Builder
	for _, turn := range history {
		if !strings.EqualFold(turn.Role, ai.RoleAssistant) {
			b.WriteString(turn.Content)
			b.WriteByte(' ')
		}
	}
	b.WriteString(message)
	return b.String()
}

func flattenHistory(history []ConversationTurn) string {
	var b strings.Builder
	for i, turn := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}
