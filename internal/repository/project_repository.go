package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Omit("WorkExperience").Create(project).Error; err != nil {
		return fmt.Errorf("create project failed: %w", err)
	}
	return nil
}

// Save writes every column, including zero values such as IsActive=false.
func (r *ProjectRepository) Save(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Omit("WorkExperience").Save(project).Error; err != nil {
		return fmt.Errorf("save project failed: %w", err)
	}
	return nil
}

func (r *ProjectRepository) SetEmbedding(ctx context.Context, id uuid.UUID, embeddingJSON *string) error {
	if err := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).
		Update("embedding_json", embeddingJSON).Error; err != nil {
		return fmt.Errorf("update project embedding failed: %w", err)
	}
	return nil
}

// SetActive flips the visibility flag. Projects are never hard-deleted so an
// admin can restore them.
func (r *ProjectRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).
		Update("is_active", active).Error; err != nil {
		return fmt.Errorf("update project visibility failed: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Reorder(ctx context.Context, orders []DisplayOrder) (int64, error) {
	n, err := updateDisplayOrder(ctx, r.db, &model.Project{}, orders)
	if err != nil {
		return 0, fmt.Errorf("reorder projects failed: %w", err)
	}
	return n, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Preload("WorkExperience").Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Preload("WorkExperience").
		Order("display_order ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}
	return projects, nil
}

// ListActive orders featured projects first, then by display order.
func (r *ProjectRepository) ListActive(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Preload("WorkExperience").
		Where("is_active = ?", true).
		Order("is_featured DESC").Order("display_order ASC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list active projects failed: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) ListFeatured(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Preload("WorkExperience").
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("display_order ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list featured projects failed: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) ListMissingEmbedding(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.WithContext(ctx).Preload("WorkExperience").
		Where("embedding_json IS NULL OR embedding_json = ''").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects without embedding failed: %w", err)
	}
	return projects, nil
}
