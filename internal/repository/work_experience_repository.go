package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
)

type WorkExperienceRepository struct {
	db *gorm.DB
}

func NewWorkExperienceRepository(db *gorm.DB) *WorkExperienceRepository {
	return &WorkExperienceRepository{db: db}
}

func (r *WorkExperienceRepository) Create(ctx context.Context, work *model.WorkExperience) error {
	if err := r.db.WithContext(ctx).Omit("Projects").Create(work).Error; err != nil {
		return fmt.Errorf("create work experience failed: %w", err)
	}
	return nil
}

func (r *WorkExperienceRepository) Save(ctx context.Context, work *model.WorkExperience) error {
	if err := r.db.WithContext(ctx).Omit("Projects").Save(work).Error; err != nil {
		return fmt.Errorf("save work experience failed: %w", err)
	}
	return nil
}

func (r *WorkExperienceRepository) SetEmbedding(ctx context.Context, id uuid.UUID, embeddingJSON *string) error {
	if err := r.db.WithContext(ctx).Model(&model.WorkExperience{}).Where("id = ?", id).
		Update("embedding_json", embeddingJSON).Error; err != nil {
		return fmt.Errorf("update work experience embedding failed: %w", err)
	}
	return nil
}

// Delete detaches linked projects before removing the row.
func (r *WorkExperienceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).Where("work_experience_id = ?", id).
			Update("work_experience_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.WorkExperience{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete work experience failed: %w", err)
	}
	return nil
}

func (r *WorkExperienceRepository) Reorder(ctx context.Context, orders []DisplayOrder) (int64, error) {
	n, err := updateDisplayOrder(ctx, r.db, &model.WorkExperience{}, orders)
	if err != nil {
		return 0, fmt.Errorf("reorder work experience failed: %w", err)
	}
	return n, nil
}

func (r *WorkExperienceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkExperience, error) {
	var work model.WorkExperience
	if err := r.db.WithContext(ctx).Preload("Projects", orderProjects).Where("id = ?", id).First(&work).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work experience failed: %w", err)
	}
	return &work, nil
}

func (r *WorkExperienceRepository) ListAll(ctx context.Context) ([]model.WorkExperience, error) {
	var items []model.WorkExperience
	if err := r.db.WithContext(ctx).Order("display_order ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list work experience failed: %w", err)
	}
	return items, nil
}

// ListActive returns active roles with their active projects attached.
func (r *WorkExperienceRepository) ListActive(ctx context.Context) ([]model.WorkExperience, error) {
	var items []model.WorkExperience
	if err := r.db.WithContext(ctx).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return orderProjects(db.Where("is_active = ?", true))
		}).
		Where("is_active = ?", true).Order("display_order ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list active work experience failed: %w", err)
	}
	return items, nil
}

func (r *WorkExperienceRepository) ListMissingEmbedding(ctx context.Context) ([]model.WorkExperience, error) {
	var items []model.WorkExperience
	if err := r.db.WithContext(ctx).
		Where("embedding_json IS NULL OR embedding_json = ''").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list work experience without embedding failed: %w", err)
	}
	return items, nil
}

func orderProjects(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC")
}
