package app

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/observability"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
)

type InformationStore interface {
	ListWithText(ctx context.Context) ([]model.Information, error)
	Create(ctx context.Context, info *model.Information) error
}

type ProjectStore interface {
	ListActive(ctx context.Context) ([]model.Project, error)
}

type WorkExperienceStore interface {
	ListActive(ctx context.Context) ([]model.WorkExperience, error)
}

// KeywordCache memoizes keywords derived from rendered entity text.
type KeywordCache interface {
	Get(ctx context.Context, kind, id, content string) ([]string, bool, error)
	Set(ctx context.Context, kind, id, content string, keywords []string) error
}

type KnowledgeService struct {
	info      InformationStore
	projects  ProjectStore
	work      WorkExperienceStore
	cache     KeywordCache
	retriever *rag.Retriever
	log       *logger.Logger
}

// NewKnowledgeService builds the retrieval pipeline. cache may be nil.
func NewKnowledgeService(
	info InformationStore,
	projects ProjectStore,
	work WorkExperienceStore,
	cache KeywordCache,
	retriever *rag.Retriever,
	log *logger.Logger,
) *KnowledgeService {
	return &KnowledgeService{
		info:      info,
		projects:  projects,
		work:      work,
		cache:     cache,
		retriever: retriever,
		log:       log.With("component", "knowledge"),
	}
}

func (s *KnowledgeService) Retrieve(ctx context.Context, queryTokens []string) (rag.Selection, error) {
	candidates, err := s.Candidates(ctx)
	if err != nil {
		return rag.Selection{}, err
	}
	sel := s.retriever.Select(candidates, queryTokens)
	s.log.Debug("context selected",
		"pool", len(candidates),
		"selected", len(sel.Candidates),
		"scored", sel.Scored,
		"fallback", sel.Fallback,
	)
	return sel, nil
}

// Candidates loads snippets, active projects and active work experience
// concurrently and merges them into one pool.
func (s *KnowledgeService) Candidates(ctx context.Context) ([]rag.Candidate, error) {
	var (
		infos    []model.Information
		projects []model.Project
		works    []model.WorkExperience
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		infos, err = s.info.ListWithText(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.projects.ListActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		works, err = s.work.ListActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load knowledge candidates failed: %w", err)
	}

	out := make([]rag.Candidate, 0, len(infos)+len(projects)+len(works))
	for _, info := range infos {
		text := info.TextValue()
		derived := s.derivedKeywords(ctx, rag.KindInformation, info.ID.String(), text)
		out = append(out, rag.Candidate{
			ID:       info.ID.String(),
			Kind:     rag.KindInformation,
			Text:     text,
			Keywords: mergeKeywords(info.KeywordTexts(), derived),
		})
	}
	for _, p := range projects {
		text := rag.RenderProject(p)
		out = append(out, rag.Candidate{
			ID:       p.ID.String(),
			Kind:     rag.KindProject,
			Text:     text,
			Keywords: s.derivedKeywords(ctx, rag.KindProject, p.ID.String(), text),
		})
	}
	for _, w := range works {
		text := rag.RenderWorkExperience(w)
		out = append(out, rag.Candidate{
			ID:       w.ID.String(),
			Kind:     rag.KindWorkExperience,
			Text:     text,
			Keywords: s.derivedKeywords(ctx, rag.KindWorkExperience, w.ID.String(), text),
		})
	}
	return out, nil
}

// mergeKeywords appends derived keywords to the explicit ones, skipping
// case-insensitive duplicates. Explicit spellings win.
func mergeKeywords(explicit, derived []string) []string {
	out := make([]string, 0, len(explicit)+len(derived))
	seen := make(map[string]struct{}, len(explicit)+len(derived))
	for _, list := range [][]string{explicit, derived} {
		for _, kw := range list {
			key := strings.ToLower(strings.TrimSpace(kw))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// derivedKeywords tokenizes entity text, going through the cache when one is
// configured. Cache failures fall back to tokenizing.
func (s *KnowledgeService) derivedKeywords(ctx context.Context, kind, id, text string) []string {
	if s.cache == nil {
		return rag.Tokenize(text)
	}
	if cached, ok, err := s.cache.Get(ctx, kind, id, text); err != nil {
		s.log.Warn("keyword cache read failed", "kind", kind, "id", id, "error", err)
	} else if ok {
		return cached
	}

	keywords := rag.Tokenize(text)
	if err := s.cache.Set(ctx, kind, id, text, keywords); err != nil {
		s.log.Warn("keyword cache write failed", "kind", kind, "id", id, "error", err)
	}
	return keywords
}

// RecordGap stores a placeholder snippet with no text so an admin can fill in
// the missing topic later.
func (s *KnowledgeService) RecordGap(ctx context.Context, queryTokens []string) error {
	gap := model.NewInformation(nil, queryTokens)
	if err := s.info.Create(ctx, gap); err != nil {
		return fmt.Errorf("record information gap failed: %w", err)
	}
	observability.InformationGapsTotal.Inc()
	s.log.Info("information gap recorded", "keywords", gap.KeywordTexts())
	return nil
}
