package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
)

type ContactRequestRepository struct {
	db *gorm.DB
}

func NewContactRequestRepository(db *gorm.DB) *ContactRequestRepository {
	return &ContactRequestRepository{db: db}
}

func (r *ContactRequestRepository) Create(ctx context.Context, req *model.ContactRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create contact request failed: %w", err)
	}
	return nil
}

func (r *ContactRequestRepository) List(ctx context.Context, unhandledOnly bool, limit int) ([]model.ContactRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if unhandledOnly {
		q = q.Where("handled = ?", false)
	}

	var items []model.ContactRequest
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list contact requests failed: %w", err)
	}
	return items, nil
}

// MarkHandled reports false when no row matched id.
func (r *ContactRequestRepository) MarkHandled(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ContactRequest{}).Where("id = ?", id).Update("handled", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark contact request handled failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
