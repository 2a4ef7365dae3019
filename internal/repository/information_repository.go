package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
)

type InformationRepository struct {
	db *gorm.DB
}

func NewInformationRepository(db *gorm.DB) *InformationRepository {
	return &InformationRepository{db: db}
}

func (r *InformationRepository) Create(ctx context.Context, info *model.Information) error {
	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		return fmt.Errorf("create information failed: %w", err)
	}
	return nil
}

// Update rewrites the text and replaces the keyword set in one transaction.
func (r *InformationRepository) Update(ctx context.Context, info *model.Information) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Information{}).Where("id = ?", info.ID).
			Updates(map[string]interface{}{"text": info.Text, "embedding_json": info.EmbeddingJSON}).Error; err != nil {
			return err
		}
		if err := tx.Where("information_id = ?", info.ID).Delete(&model.Keyword{}).Error; err != nil {
			return err
		}
		if len(info.Keywords) == 0 {
			return nil
		}
		for i := range info.Keywords {
			info.Keywords[i].InformationID = info.ID
		}
		return tx.Create(&info.Keywords).Error
	})
	if err != nil {
		return fmt.Errorf("update information failed: %w", err)
	}
	return nil
}

func (r *InformationRepository) SetEmbedding(ctx context.Context, id uuid.UUID, embeddingJSON *string) error {
	if err := r.db.WithContext(ctx).Model(&model.Information{}).Where("id = ?", id).
		Update("embedding_json", embeddingJSON).Error; err != nil {
		return fmt.Errorf("update information embedding failed: %w", err)
	}
	return nil
}

func (r *InformationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("information_id = ?", id).Delete(&model.Keyword{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Information{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete information failed: %w", err)
	}
	return nil
}

func (r *InformationRepository) AddKeyword(ctx context.Context, kw *model.Keyword) error {
	if err := r.db.WithContext(ctx).Create(kw).Error; err != nil {
		return fmt.Errorf("add keyword failed: %w", err)
	}
	return nil
}

// DeleteKeyword removes a keyword only when it belongs to infoID. It reports
// false when nothing matched.
func (r *InformationRepository) DeleteKeyword(ctx context.Context, infoID, keywordID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND information_id = ?", keywordID, infoID).
		Delete(&model.Keyword{})
	if res.Error != nil {
		return false, fmt.Errorf("delete keyword failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *InformationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Information, error) {
	var info model.Information
	if err := r.db.WithContext(ctx).Preload("Keywords").Where("id = ?", id).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get information failed: %w", err)
	}
	return &info, nil
}

func (r *InformationRepository) ListAll(ctx context.Context) ([]model.Information, error) {
	var items []model.Information
	if err := r.db.WithContext(ctx).Preload("Keywords").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list information failed: %w", err)
	}
	return items, nil
}

// ListWithText returns snippets that can be used as answer context.
func (r *InformationRepository) ListWithText(ctx context.Context) ([]model.Information, error) {
	var items []model.Information
	if err := r.db.WithContext(ctx).Preload("Keywords").
		Where("text IS NOT NULL AND text <> ''").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list information with text failed: %w", err)
	}
	return items, nil
}

// ListGaps returns information requests recorded for topics nobody has written about yet.
func (r *InformationRepository) ListGaps(ctx context.Context) ([]model.Information, error) {
	var items []model.Information
	if err := r.db.WithContext(ctx).Preload("Keywords").
		Where("text IS NULL OR text = ''").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list information gaps failed: %w", err)
	}
	return items, nil
}

func (r *InformationRepository) ListMissingEmbedding(ctx context.Context) ([]model.Information, error) {
	var items []model.Information
	if err := r.db.WithContext(ctx).
		Where("text IS NOT NULL AND text <> ''").
		Where("embedding_json IS NULL OR embedding_json = ''").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list information without embedding failed: %w", err)
	}
	return items, nil
}
