package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/SamOhrenberg/AboutSamuel/internal/ai"
	"github.com/SamOhrenberg/AboutSamuel/internal/config"
	"github.com/SamOhrenberg/AboutSamuel/internal/observability"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
)

var (
	ErrNoResumeData   = errors.New("no information available for the resume")
	ErrResumeGenerate = errors.New("resume generation failed")
)

type ResumeService struct {
	info    InformationStore
	llm     ChatCompleter
	prompts Prompts
	model   string
	maxTok  int
	log     *logger.Logger
}

func NewResumeService(info InformationStore, llm ChatCompleter, cfg *config.Config, log *logger.Logger) *ResumeService {
	return &ResumeService{
		info:    info,
		llm:     llm,
		prompts: NewPrompts(cfg.Chat),
		model:   cfg.LLM.AnswerModel,
		maxTok:  cfg.Chat.ResumeMaxTokens,
		log:     log.With("component", "resume"),
	}
}

// Generate asks the model for an HTML résumé built from every information
// snippet, optionally tailored to jobTitle.
func (s *ResumeService) Generate(ctx context.Context, jobTitle string) (string, error) {
	infos, err := s.info.ListWithText(ctx)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(infos))
	for _, info := range infos {
		texts = append(texts, strings.TrimSpace(info.TextValue()))
	}
	if len(texts) == 0 {
		return "", ErrNoResumeData
	}
	sort.Strings(texts)

	completion, err := s.llm.Complete(ctx, ai.CompletionRequest{
		Model: s.model,
		Messages: []ai.ChatMessage{
			{Role: ai.RoleSystem, Content: s.prompts.Resume(jobTitle)},
			{Role: ai.RoleUser, Content: strings.Join(texts, "\n\nNew Information:\n")},
		},
		MaxTokens: s.maxTok,
	})
	observability.ObserveLLM("resume", err)
	if err != nil {
		s.log.Error("resume request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrResumeGenerate, err)
	}

	html := extractResumeHTML(completion.Message.Content)
	if html == "" {
		return "", ErrResumeGenerate
	}
	return html, nil
}

// extractResumeHTML unwraps {"html": "..."}; output that is not JSON is returned as is.
func extractResumeHTML(raw string) string {
	cleaned := ai.StripCodeFences(raw)
	obj, ok := ai.ExtractJSONObject(cleaned)
	if !ok {
		return cleaned
	}
	var payload struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil || strings.TrimSpace(payload.HTML) == "" {
		return cleaned
	}
	return strings.TrimSpace(payload.HTML)
}
