package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID               uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	WorkExperienceID *uuid.UUID      `gorm:"type:char(36);index" json:"work_experience_id"`
	WorkExperience   *WorkExperience `gorm:"foreignKey:WorkExperienceID" json:"work_experience,omitempty"`
	Title            string          `gorm:"size:256;not null" json:"title"`
	Role             string          `gorm:"size:256" json:"role"`
	Summary          string          `gorm:"type:text" json:"summary"`
	Detail           *string         `gorm:"type:text" json:"detail"`
	ImpactStatement  *string         `gorm:"type:text" json:"impact_statement"`
	// TechStack is a JSON array of technology names, e.g. ["C#", "ASP.NET Core"].
	TechStack     string  `gorm:"type:text" json:"-"`
	DisplayOrder  int     `json:"display_order"`
	IsFeatured    bool    `gorm:"not null" json:"is_featured"`
	IsActive      bool    `gorm:"not null;index" json:"is_active"`
	StartYear     *string `gorm:"size:16" json:"start_year"`
	EndYear       *string `gorm:"size:16" json:"end_year"`
	EmbeddingJSON *string `gorm:"type:longtext" json:"-"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Project) TechStackList() []string {
	return decodeStringList(p.TechStack)
}

func (p *Project) SetTechStack(items []string) {
	p.TechStack = encodeStringList(items)
}

func (p *Project) SetEmbedding(vec []float32) {
	p.EmbeddingJSON = EncodeEmbedding(vec)
}
