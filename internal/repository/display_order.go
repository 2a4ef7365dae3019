package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DisplayOrder assigns a position to one row of an ordered admin list.
type DisplayOrder struct {
	ID    uuid.UUID
	Order int
}

// updateDisplayOrder writes every position in one transaction and returns how
// many rows changed. Unknown ids are skipped.
func updateDisplayOrder(ctx context.Context, db *gorm.DB, table interface{}, orders []DisplayOrder) (int64, error) {
	var changed int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			res := tx.Model(table).Where("id = ?", o.ID).Update("display_order", o.Order)
			if res.Error != nil {
				return res.Error
			}
			changed += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
