package handler

import (
	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
)

// Views expose the JSON list columns as arrays.

type projectView struct {
	ID               uuid.UUID  `json:"id"`
	WorkExperienceID *uuid.UUID `json:"work_experience_id"`
	Employer         string     `json:"employer,omitempty"`
	Title            string     `json:"title"`
	Role             string     `json:"role"`
	Summary          string     `json:"summary"`
	Detail           *string    `json:"detail"`
	ImpactStatement  *string    `json:"impact_statement"`
	TechStack        []string   `json:"tech_stack"`
	DisplayOrder     int        `json:"display_order"`
	IsFeatured       bool       `json:"is_featured"`
	IsActive         bool       `json:"is_active"`
	StartYear        *string    `json:"start_year"`
	EndYear          *string    `json:"end_year"`
}

type workView struct {
	ID           uuid.UUID     `json:"id"`
	Employer     string        `json:"employer"`
	Title        string        `json:"title"`
	StartYear    *string       `json:"start_year"`
	EndYear      *string       `json:"end_year"`
	Summary      *string       `json:"summary"`
	Achievements []string      `json:"achievements"`
	DisplayOrder int           `json:"display_order"`
	IsActive     bool          `json:"is_active"`
	Projects     []projectView `json:"projects,omitempty"`
}

func newProjectView(p model.Project) projectView {
	v := projectView{
		ID:               p.ID,
		WorkExperienceID: p.WorkExperienceID,
		Title:            p.Title,
		Role:             p.Role,
		Summary:          p.Summary,
		Detail:           p.Detail,
		ImpactStatement:  p.ImpactStatement,
		TechStack:        p.TechStackList(),
		DisplayOrder:     p.DisplayOrder,
		IsFeatured:       p.IsFeatured,
		IsActive:         p.IsActive,
		StartYear:        p.StartYear,
		EndYear:          p.EndYear,
	}
	if p.WorkExperience != nil {
		v.Employer = p.WorkExperience.Employer
	}
	return v
}

func projectViews(projects []model.Project) []projectView {
	out := make([]projectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, newProjectView(p))
	}
	return out
}

func newWorkView(w model.WorkExperience) workView {
	v := workView{
		ID:           w.ID,
		Employer:     w.Employer,
		Title:        w.Title,
		StartYear:    w.StartYear,
		EndYear:      w.EndYear,
		Summary:      w.Summary,
		Achievements: w.AchievementList(),
		DisplayOrder: w.DisplayOrder,
		IsActive:     w.IsActive,
	}
	if len(w.Projects) > 0 {
		v.Projects = projectViews(w.Projects)
	}
	return v
}

func workViews(work []model.WorkExperience) []workView {
	out := make([]workView, 0, len(work))
	for _, w := range work {
		out = append(out, newWorkView(w))
	}
	return out
}
