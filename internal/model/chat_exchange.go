package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatExchange is one visitor message and the reply that was sent back. Rows are
// written once and never updated.
type ChatExchange struct {
	ID                uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	History           string     `gorm:"type:text" json:"history"`
	Message           string     `gorm:"type:text;not null" json:"message"`
	Response          string     `gorm:"type:text" json:"response"`
	ReceivedAt        time.Time  `gorm:"not null;index" json:"received_at"`
	ResponseTookMs    int64      `json:"response_took_ms"`
	TokenLimitReached bool       `gorm:"not null" json:"token_limit_reached"`
	Error             bool       `gorm:"not null;index" json:"error"`
	SessionTrackingID *uuid.UUID `gorm:"type:char(36);index" json:"session_tracking_id"`
}

func (c *ChatExchange) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
