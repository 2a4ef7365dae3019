package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRequest struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Email     string    `gorm:"size:256;not null" json:"email"`
	Message   *string   `gorm:"type:text" json:"message"`
	Handled   bool      `gorm:"not null;index" json:"handled"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *ContactRequest) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
