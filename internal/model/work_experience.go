package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkExperience struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Employer  string    `gorm:"size:256;not null" json:"employer"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	StartYear *string   `gorm:"size:16" json:"start_year"`
	EndYear   *string   `gorm:"size:16" json:"end_year"`
	Summary   *string   `gorm:"type:text" json:"summary"`
	// Achievements is a JSON array of bullet strings.
	Achievements  string    `gorm:"type:text" json:"-"`
	DisplayOrder  int       `json:"display_order"`
	IsActive      bool      `gorm:"not null;index" json:"is_active"`
	EmbeddingJSON *string   `gorm:"type:longtext" json:"-"`
	Projects      []Project `gorm:"foreignKey:WorkExperienceID" json:"projects,omitempty"`
}

func (w *WorkExperience) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (w *WorkExperience) AchievementList() []string {
	return decodeStringList(w.Achievements)
}

func (w *WorkExperience) SetAchievements(items []string) {
	w.Achievements = encodeStringList(items)
}

func (w *WorkExperience) SetEmbedding(vec []float32) {
	w.EmbeddingJSON = EncodeEmbedding(vec)
}
