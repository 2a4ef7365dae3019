package rag

import (
	"strings"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
)

// RenderProject flattens a project into snippet-shaped text for the answer prompt.
// The employer line is omitted when the linked role is inactive.
func RenderProject(p model.Project) string {
	var b strings.Builder
	b.WriteString("Project: " + p.Title)
	if p.Role != "" {
		b.WriteString("\nRole: " + p.Role)
	}
	if p.WorkExperience != nil && p.WorkExperience.IsActive {
		b.WriteString("\nEmployer: " + p.WorkExperience.Employer)
	}
	if years := yearRange(p.StartYear, p.EndYear); years != "" {
		b.WriteString("\nYears: " + years)
	}
	writeLine(&b, "Summary", p.Summary)
	if p.Detail != nil {
		writeLine(&b, "Details", *p.Detail)
	}
	if p.ImpactStatement != nil {
		writeLine(&b, "Impact", *p.ImpactStatement)
	}
	if stack := p.TechStackList(); len(stack) > 0 {
		b.WriteString("\nTech stack: " + strings.Join(stack, ", "))
	}
	return b.String()
}

func RenderWorkExperience(w model.WorkExperience) string {
	var b strings.Builder
	b.WriteString("Role: " + w.Title + " at " + w.Employer)
	if years := yearRange(w.StartYear, w.EndYear); years != "" {
		b.WriteString("\nYears: " + years)
	}
	if w.Summary != nil {
		writeLine(&b, "Summary", *w.Summary)
	}
	if achievements := w.AchievementList(); len(achievements) > 0 {
		b.WriteString("\nAchievements:")
		for _, a := range achievements {
			b.WriteString("\n- " + a)
		}
	}
	if len(w.Projects) > 0 {
		titles := make([]string, 0, len(w.Projects))
		for _, p := range w.Projects {
			titles = append(titles, p.Title)
		}
		b.WriteString("\nProjects: " + strings.Join(titles, ", "))
	}
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		b.WriteString("\n" + label + ": " + value)
	}
}

func yearRange(start, end *string) string {
	switch {
	case start != nil && end != nil:
		return *start + " - " + *end
	case start != nil:
		return *start + " - present"
	case end != nil:
		return "until " + *end
	default:
		return ""
	}
}
