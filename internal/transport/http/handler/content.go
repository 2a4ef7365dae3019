package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/app"
	"github.com/SamOhrenberg/AboutSamuel/internal/repository"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/response"
)

type ContentHandler struct {
	content *app.ContentService
}

type InformationRequest struct {
	Text     string   `json:"text" binding:"required"`
	Keywords []string `json:"keywords"`
}

type ProjectRequest struct {
	WorkExperienceID *uuid.UUID `json:"work_experience_id"`
	Title            string     `json:"title" binding:"required,max=256"`
	Role             string     `json:"role" binding:"max=256"`
	Summary          string     `json:"summary"`
	Detail           *string    `json:"detail"`
	ImpactStatement  *string    `json:"impact_statement"`
	TechStack        []string   `json:"tech_stack"`
	DisplayOrder     int        `json:"display_order"`
	IsFeatured       bool       `json:"is_featured"`
	IsActive         *bool      `json:"is_active"`
	StartYear        *string    `json:"start_year" binding:"omitempty,max=16"`
	EndYear          *string    `json:"end_year" binding:"omitempty,max=16"`
}

type WorkExperienceRequest struct {
	Employer     string   `json:"employer" binding:"required,max=256"`
	Title        string   `json:"title" binding:"required,max=256"`
	StartYear    *string  `json:"start_year" binding:"omitempty,max=16"`
	EndYear      *string  `json:"end_year" binding:"omitempty,max=16"`
	Summary      *string  `json:"summary"`
	Achievements []string `json:"achievements"`
	DisplayOrder int      `json:"display_order"`
	IsActive     *bool    `json:"is_active"`
}

type KeywordRequest struct {
	Text string `json:"text" binding:"required,max=128"`
}

type ProjectOrderItem struct {
	ProjectID    uuid.UUID `json:"project_id"`
	DisplayOrder int       `json:"display_order"`
}

func NewContentHandler(content *app.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) PublicProjects(c *gin.Context) {
	projects, err := h.content.ListPublicProjects(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list projects failed")
		return
	}
	response.OK(c, projectViews(projects))
}

func (h *ContentHandler) FeaturedProjects(c *gin.Context) {
	projects, err := h.content.ListFeaturedProjects(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list featured projects failed")
		return
	}
	response.OK(c, projectViews(projects))
}

func (h *ContentHandler) PublicWorkExperience(c *gin.Context) {
	work, err := h.content.ListPublicWorkExperience(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list work experience failed")
		return
	}
	response.OK(c, workViews(work))
}

func (h *ContentHandler) ListInformation(c *gin.Context) {
	items, err := h.content.ListInformation(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list information failed")
		return
	}
	response.OK(c, items)
}

func (h *ContentHandler) ListInformationGaps(c *gin.Context) {
	items, err := h.content.ListInformationGaps(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list information gaps failed")
		return
	}
	response.OK(c, items)
}

func (h *ContentHandler) GetInformation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	info, err := h.content.GetInformation(c.Request.Context(), id)
	if err != nil {
		writeContentError(c, err, "get information failed")
		return
	}
	response.OK(c, info)
}

func (h *ContentHandler) CreateInformation(c *gin.Context) {
	var req InformationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	info, err := h.content.CreateInformation(c.Request.Context(), app.InformationInput{Text: req.Text, Keywords: req.Keywords})
	if err != nil {
		writeContentError(c, err, "create information failed")
		return
	}
	response.OK(c, info)
}

func (h *ContentHandler) UpdateInformation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req InformationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	info, err := h.content.UpdateInformation(c.Request.Context(), id, app.InformationInput{Text: req.Text, Keywords: req.Keywords})
	if err != nil {
		writeContentError(c, err, "update information failed")
		return
	}
	response.OK(c, info)
}

func (h *ContentHandler) DeleteInformation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteInformation(c.Request.Context(), id); err != nil {
		writeContentError(c, err, "delete information failed")
		return
	}
	response.OK(c, gin.H{"deleted_id": id})
}

func (h *ContentHandler) ListProjects(c *gin.Context) {
	projects, err := h.content.ListProjects(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list projects failed")
		return
	}
	response.OK(c, projectViews(projects))
}

func (h *ContentHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	project, err := h.content.GetProject(c.Request.Context(), id)
	if err != nil {
		writeContentError(c, err, "get project failed")
		return
	}
	response.OK(c, newProjectView(*project))
}

func (h *ContentHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	project, err := h.content.CreateProject(c.Request.Context(), req.toInput())
	if err != nil {
		writeContentError(c, err, "create project failed")
		return
	}
	response.OK(c, newProjectView(*project))
}

func (h *ContentHandler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	project, err := h.content.UpdateProject(c.Request.Context(), id, req.toInput())
	if err != nil {
		writeContentError(c, err, "update project failed")
		return
	}
	response.OK(c, newProjectView(*project))
}

func (h *ContentHandler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteProject(c.Request.Context(), id); err != nil {
		writeContentError(c, err, "delete project failed")
		return
	}
	response.OK(c, gin.H{"deleted_id": id})
}

func (h *ContentHandler) RestoreProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	project, err := h.content.RestoreProject(c.Request.Context(), id)
	if err != nil {
		writeContentError(c, err, "restore project failed")
		return
	}
	response.OK(c, newProjectView(*project))
}

// ReorderProjects takes [{"project_id": ..., "display_order": n}, ...].
func (h *ContentHandler) ReorderProjects(c *gin.Context) {
	var items []ProjectOrderItem
	if err := c.ShouldBindJSON(&items); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	orders := make([]repository.DisplayOrder, 0, len(items))
	for _, item := range items {
		if item.ProjectID == uuid.Nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "project_id is required")
			return
		}
		orders = append(orders, repository.DisplayOrder{ID: item.ProjectID, Order: item.DisplayOrder})
	}
	updated, err := h.content.ReorderProjects(c.Request.Context(), orders)
	if err != nil {
		writeContentError(c, err, "reorder projects failed")
		return
	}
	response.OK(c, gin.H{"updated": updated})
}

func (h *ContentHandler) ListWorkExperience(c *gin.Context) {
	work, err := h.content.ListWorkExperience(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list work experience failed")
		return
	}
	response.OK(c, workViews(work))
}

func (h *ContentHandler) GetWorkExperience(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	work, err := h.content.GetWorkExperience(c.Request.Context(), id)
	if err != nil {
		writeContentError(c, err, "get work experience failed")
		return
	}
	response.OK(c, newWorkView(*work))
}

func (h *ContentHandler) CreateWorkExperience(c *gin.Context) {
	var req WorkExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	work, err := h.content.CreateWorkExperience(c.Request.Context(), req.toInput())
	if err != nil {
		writeContentError(c, err, "create work experience failed")
		return
	}
	response.OK(c, newWorkView(*work))
}

func (h *ContentHandler) UpdateWorkExperience(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req WorkExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	work, err := h.content.UpdateWorkExperience(c.Request.Context(), id, req.toInput())
	if err != nil {
		writeContentError(c, err, "update work experience failed")
		return
	}
	response.OK(c, newWorkView(*work))
}

func (h *ContentHandler) DeleteWorkExperience(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteWorkExperience(c.Request.Context(), id); err != nil {
		writeContentError(c, err, "delete work experience failed")
		return
	}
	response.OK(c, gin.H{"deleted_id": id})
}

// ReorderWorkExperience takes the role ids in their new display order.
func (h *ContentHandler) ReorderWorkExperience(c *gin.Context) {
	var ids []uuid.UUID
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	updated, err := h.content.ReorderWorkExperience(c.Request.Context(), ids)
	if err != nil {
		writeContentError(c, err, "reorder work experience failed")
		return
	}
	response.OK(c, gin.H{"updated": updated})
}

func (h *ContentHandler) AddKeyword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req KeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "keyword text is required")
		return
	}
	kw, err := h.content.AddKeyword(c.Request.Context(), id, req.Text)
	if err != nil {
		writeContentError(c, err, "add keyword failed")
		return
	}
	response.OK(c, kw)
}

func (h *ContentHandler) DeleteKeyword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	keywordID, ok := parseParamID(c, "keywordId")
	if !ok {
		return
	}
	if err := h.content.DeleteKeyword(c.Request.Context(), id, keywordID); err != nil {
		writeContentError(c, err, "delete keyword failed")
		return
	}
	response.OK(c, gin.H{"deleted_id": keywordID})
}

func (r ProjectRequest) toInput() app.ProjectInput {
	return app.ProjectInput{
		WorkExperienceID: r.WorkExperienceID,
		Title:            r.Title,
		Role:             r.Role,
		Summary:          r.Summary,
		Detail:           r.Detail,
		ImpactStatement:  r.ImpactStatement,
		TechStack:        r.TechStack,
		DisplayOrder:     r.DisplayOrder,
		IsFeatured:       r.IsFeatured,
		IsActive:         r.IsActive,
		StartYear:        r.StartYear,
		EndYear:          r.EndYear,
	}
}

func (r WorkExperienceRequest) toInput() app.WorkExperienceInput {
	return app.WorkExperienceInput{
		Employer:     r.Employer,
		Title:        r.Title,
		StartYear:    r.StartYear,
		EndYear:      r.EndYear,
		Summary:      r.Summary,
		Achievements: r.Achievements,
		DisplayOrder: r.DisplayOrder,
		IsActive:     r.IsActive,
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	return parseParamID(c, "id")
}

func parseParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func writeContentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
