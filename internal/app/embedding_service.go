package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
	"github.com/SamOhrenberg/AboutSamuel/internal/rag"
	"github.com/SamOhrenberg/AboutSamuel/internal/repository"
)

// Providers commonly cap the number of inputs per embedding request.
const embeddingBatchSize = 10

type Embedder interface {
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// EmbeddingService backfills vectors for content that has none. Vectors are stored
// for future semantic search; retrieval itself is keyword based.
type EmbeddingService struct {
	embedder    Embedder
	embedModel  string
	infoRepo    *repository.InformationRepository
	projectRepo *repository.ProjectRepository
	workRepo    *repository.WorkExperienceRepository
	log         *logger.Logger
}

func NewEmbeddingService(
	embedder Embedder,
	embedModel string,
	infoRepo *repository.InformationRepository,
	projectRepo *repository.ProjectRepository,
	workRepo *repository.WorkExperienceRepository,
	log *logger.Logger,
) *EmbeddingService {
	return &EmbeddingService{
		embedder:    embedder,
		embedModel:  embedModel,
		infoRepo:    infoRepo,
		projectRepo: projectRepo,
		workRepo:    workRepo,
		log:         log.With("component", "embedding"),
	}
}

type EmbeddingReport struct {
	Information    int `json:"information"`
	Projects       int `json:"projects"`
	WorkExperience int `json:"work_experience"`
}

type embedItem struct {
	id   uuid.UUID
	text string
}

// GenerateMissing embeds every snippet, project and work experience without a stored vector.
func (s *EmbeddingService) GenerateMissing(ctx context.Context) (*EmbeddingReport, error) {
	report := &EmbeddingReport{}

	infos, err := s.infoRepo.ListMissingEmbedding(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]embedItem, 0, len(infos))
	for _, info := range infos {
		if info.IsGap() {
			continue
		}
		items = append(items, embedItem{id: info.ID, text: info.TextValue()})
	}
	if report.Information, err = s.embed(ctx, items, s.infoRepo.SetEmbedding); err != nil {
		return report, fmt.Errorf("embed information failed: %w", err)
	}

	projects, err := s.projectRepo.ListMissingEmbedding(ctx)
	if err != nil {
		return report, err
	}
	items = items[:0]
	for _, p := range projects {
		items = append(items, embedItem{id: p.ID, text: rag.RenderProject(p)})
	}
	if report.Projects, err = s.embed(ctx, items, s.projectRepo.SetEmbedding); err != nil {
		return report, fmt.Errorf("embed projects failed: %w", err)
	}

	works, err := s.workRepo.ListMissingEmbedding(ctx)
	if err != nil {
		return report, err
	}
	items = items[:0]
	for _, w := range works {
		items = append(items, embedItem{id: w.ID, text: rag.RenderWorkExperience(w)})
	}
	if report.WorkExperience, err = s.embed(ctx, items, s.workRepo.SetEmbedding); err != nil {
		return report, fmt.Errorf("embed work experience failed: %w", err)
	}

	s.log.Info("embeddings generated",
		"information", report.Information,
		"projects", report.Projects,
		"work_experience", report.WorkExperience,
	)
	return report, nil
}

func (s *EmbeddingService) embed(
	ctx context.Context,
	items []embedItem,
	store func(ctx context.Context, id uuid.UUID, embeddingJSON *string) error,
) (int, error) {
	done := 0
	for i := 0; i < len(items); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]

		texts := make([]string, len(batch))
		for j, item := range batch {
			texts[j] = item.text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, s.embedModel, texts)
		if err != nil {
			return done, err
		}
		if len(vectors) != len(batch) {
			return done, fmt.Errorf("embedding count mismatch: got %d want %d", len(vectors), len(batch))
		}
		for j, item := range batch {
			if err := store(ctx, item.id, model.EncodeEmbedding(vectors[j])); err != nil {
				return done, err
			}
			done++
		}
	}
	return done, nil
}
