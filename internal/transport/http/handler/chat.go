package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/app"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/response"
)

const tokenLimitHeader = "X-Token-Limit-Reached"

type ChatRunner interface {
	Chat(ctx context.Context, input app.ChatInput) app.ChatReply
	StreamChat(ctx context.Context, input app.ChatInput, emit func(app.StreamEvent) error) error
}

type ResumeGenerator interface {
	Generate(ctx context.Context, jobTitle string) (string, error)
}

type ChatHandler struct {
	chat   ChatRunner
	resume ResumeGenerator
}

type ChatTurnRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message        string            `json:"message" binding:"required,max=4000"`
	History        []ChatTurnRequest `json:"history" binding:"max=50"`
	UserTrackingID string            `json:"userTrackingId"`
}

func NewChatHandler(chat ChatRunner, resume ResumeGenerator) *ChatHandler {
	return &ChatHandler{chat: chat, resume: resume}
}

func (r ChatRequest) toInput() app.ChatInput {
	input := app.ChatInput{Message: r.Message}
	for _, t := range r.History {
		input.History = append(input.History, app.ConversationTurn{Role: t.Role, Content: t.Content})
	}
	if id, err := uuid.Parse(strings.TrimSpace(r.UserTrackingID)); err == nil {
		input.SessionTrackingID = &id
	}
	return input
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	reply := h.chat.Chat(c.Request.Context(), req.toInput())
	if reply.TokenLimitReached {
		c.Header(tokenLimitHeader, "true")
	}
	status := http.StatusOK
	if reply.Error {
		status = http.StatusBadRequest
	}
	c.JSON(status, reply)
}

// Stream answers over server-sent events: token frames, one metadata frame,
// then a [DONE] sentinel.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	emit := func(ev app.StreamEvent) error {
		if ev.Metadata != nil {
			return writeSSE(c, flusher, "metadata", ev.Metadata)
		}
		return writeSSE(c, flusher, "", gin.H{"token": ev.Token})
	}
	if err := h.chat.StreamChat(c.Request.Context(), req.toInput(), emit); err != nil {
		return
	}
	if c.Request.Context().Err() != nil {
		return
	}
	if _, err := c.Writer.Write([]byte("data: [DONE]\n\n")); err == nil {
		flusher.Flush()
	}
}

func writeSSE(c *gin.Context, flusher http.Flusher, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var frame strings.Builder
	if event != "" {
		fmt.Fprintf(&frame, "event: %s\n", event)
	}
	fmt.Fprintf(&frame, "data: %s\n\n", data)
	if _, err := c.Writer.Write([]byte(frame.String())); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func (h *ChatHandler) Resume(c *gin.Context) {
	html, err := h.resume.Generate(c.Request.Context(), c.Param("jobTitle"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoResumeData):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, "resume generation failed")
		}
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
