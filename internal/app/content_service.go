package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/repository"
)

var ErrNotFound = errors.New("record not found")

// ContentService manages the curated portfolio data behind the admin surface
// and serves the public read endpoints.
type ContentService struct {
	infoRepo    *repository.InformationRepository
	projectRepo *repository.ProjectRepository
	workRepo    *repository.WorkExperienceRepository
}

func NewContentService(
	infoRepo *repository.InformationRepository,
	projectRepo *repository.ProjectRepository,
	workRepo *repository.WorkExperienceRepository,
) *ContentService {
	return &ContentService{
		infoRepo:    infoRepo,
		projectRepo: projectRepo,
		workRepo:    workRepo,
	}
}

type InformationInput struct {
	Text     string
	Keywords []string
}

func (s *ContentService) CreateInformation(ctx context.Context, in InformationInput) (*model.Information, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidInput
	}
	info := model.NewInformation(&text, in.Keywords)
	if err := s.infoRepo.Create(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// UpdateInformation replaces text and keywords. Filling in a recorded gap is an update.
// The stored embedding is cleared because it no longer matches the text.
func (s *ContentService) UpdateInformation(ctx context.Context, id uuid.UUID, in InformationInput) (*model.Information, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidInput
	}
	info, err := s.infoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNotFound
	}

	info.Text = &text
	info.EmbeddingJSON = nil
	info.SetKeywords(in.Keywords)
	if err := s.infoRepo.Update(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *ContentService) DeleteInformation(ctx context.Context, id uuid.UUID) error {
	info, err := s.infoRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if info == nil {
		return ErrNotFound
	}
	return s.infoRepo.Delete(ctx, id)
}

func (s *ContentService) GetInformation(ctx context.Context, id uuid.UUID) (*model.Information, error) {
	info, err := s.infoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNotFound
	}
	return info, nil
}

func (s *ContentService) ListInformation(ctx context.Context) ([]model.Information, error) {
	return s.infoRepo.ListAll(ctx)
}

func (s *ContentService) ListInformationGaps(ctx context.Context) ([]model.Information, error) {
	return s.infoRepo.ListGaps(ctx)
}

// AddKeyword attaches one explicit keyword to a snippet. A keyword the snippet
// already carries, ignoring case, is returned unchanged.
func (s *ContentService) AddKeyword(ctx context.Context, infoID uuid.UUID, text string) (*model.Keyword, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}
	info, err := s.infoRepo.GetByID(ctx, infoID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNotFound
	}
	for i := range info.Keywords {
		if strings.EqualFold(info.Keywords[i].Text, text) {
			return &info.Keywords[i], nil
		}
	}

	kw := &model.Keyword{ID: uuid.New(), InformationID: infoID, Text: text}
	if err := s.infoRepo.AddKeyword(ctx, kw); err != nil {
		return nil, err
	}
	return kw, nil
}

func (s *ContentService) DeleteKeyword(ctx context.Context, infoID, keywordID uuid.UUID) error {
	ok, err := s.infoRepo.DeleteKeyword(ctx, infoID, keywordID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

type ProjectInput struct {
	WorkExperienceID *uuid.UUID
	Title            string
	Role             string
	Summary          string
	Detail           *string
	ImpactStatement  *string
	TechStack        []string
	DisplayOrder     int
	IsFeatured       bool
	IsActive         *bool
	StartYear        *string
	EndYear          *string
}

func (s *ContentService) CreateProject(ctx context.Context, in ProjectInput) (*model.Project, error) {
	project := &model.Project{}
	if err := s.applyProject(ctx, project, in); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ContentService) UpdateProject(ctx context.Context, id uuid.UUID, in ProjectInput) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if err := s.applyProject(ctx, project, in); err != nil {
		return nil, err
	}
	project.WorkExperience = nil
	project.EmbeddingJSON = nil
	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ContentService) applyProject(ctx context.Context, p *model.Project, in ProjectInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrInvalidInput
	}
	if in.WorkExperienceID != nil {
		work, err := s.workRepo.GetByID(ctx, *in.WorkExperienceID)
		if err != nil {
			return err
		}
		if work == nil {
			return ErrInvalidInput
		}
	}

	p.WorkExperienceID = in.WorkExperienceID
	p.Title = title
	p.Role = strings.TrimSpace(in.Role)
	p.Summary = strings.TrimSpace(in.Summary)
	p.Detail = trimmedOrNil(in.Detail)
	p.ImpactStatement = trimmedOrNil(in.ImpactStatement)
	p.SetTechStack(in.TechStack)
	p.DisplayOrder = in.DisplayOrder
	p.IsFeatured = in.IsFeatured
	p.IsActive = in.IsActive == nil || *in.IsActive
	p.StartYear = trimmedOrNil(in.StartYear)
	p.EndYear = trimmedOrNil(in.EndYear)
	return nil
}

// DeleteProject hides the project from public lists and the chatbot. The row is
// kept so RestoreProject can bring it back.
func (s *ContentService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	return s.projectRepo.SetActive(ctx, id, false)
}

func (s *ContentService) RestoreProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.SetActive(ctx, id, true); err != nil {
		return nil, err
	}
	project.IsActive = true
	return project, nil
}

// ReorderProjects applies explicit positions. Ids that no longer exist are ignored.
func (s *ContentService) ReorderProjects(ctx context.Context, orders []repository.DisplayOrder) (int64, error) {
	if len(orders) == 0 {
		return 0, ErrInvalidInput
	}
	return s.projectRepo.Reorder(ctx, orders)
}

func (s *ContentService) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

func (s *ContentService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.projectRepo.ListAll(ctx)
}

// ListPublicProjects returns active projects, featured first.
func (s *ContentService) ListPublicProjects(ctx context.Context) ([]model.Project, error) {
	return s.projectRepo.ListActive(ctx)
}

func (s *ContentService) ListFeaturedProjects(ctx context.Context) ([]model.Project, error) {
	return s.projectRepo.ListFeatured(ctx)
}

type WorkExperienceInput struct {
	Employer     string
	Title        string
	StartYear    *string
	EndYear      *string
	Summary      *string
	Achievements []string
	DisplayOrder int
	IsActive     *bool
}

func (s *ContentService) CreateWorkExperience(ctx context.Context, in WorkExperienceInput) (*model.WorkExperience, error) {
	work := &model.WorkExperience{}
	if err := applyWorkExperience(work, in); err != nil {
		return nil, err
	}
	if err := s.workRepo.Create(ctx, work); err != nil {
		return nil, err
	}
	return work, nil
}

func (s *ContentService) UpdateWorkExperience(ctx context.Context, id uuid.UUID, in WorkExperienceInput) (*model.WorkExperience, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if work == nil {
		return nil, ErrNotFound
	}
	if err := applyWorkExperience(work, in); err != nil {
		return nil, err
	}
	work.EmbeddingJSON = nil
	if err := s.workRepo.Save(ctx, work); err != nil {
		return nil, err
	}
	return work, nil
}

func applyWorkExperience(w *model.WorkExperience, in WorkExperienceInput) error {
	employer := strings.TrimSpace(in.Employer)
	title := strings.TrimSpace(in.Title)
	if employer == "" || title == "" {
		return ErrInvalidInput
	}
	w.Employer = employer
	w.Title = title
	w.StartYear = trimmedOrNil(in.StartYear)
	w.EndYear = trimmedOrNil(in.EndYear)
	w.Summary = trimmedOrNil(in.Summary)
	w.SetAchievements(in.Achievements)
	w.DisplayOrder = in.DisplayOrder
	w.IsActive = in.IsActive == nil || *in.IsActive
	return nil
}

func (s *ContentService) DeleteWorkExperience(ctx context.Context, id uuid.UUID) error {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if work == nil {
		return ErrNotFound
	}
	return s.workRepo.Delete(ctx, id)
}

// ReorderWorkExperience places roles in the given order, the first id at position 0.
func (s *ContentService) ReorderWorkExperience(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrInvalidInput
	}
	orders := make([]repository.DisplayOrder, len(ids))
	for i, id := range ids {
		orders[i] = repository.DisplayOrder{ID: id, Order: i}
	}
	return s.workRepo.Reorder(ctx, orders)
}

func (s *ContentService) GetWorkExperience(ctx context.Context, id uuid.UUID) (*model.WorkExperience, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if work == nil {
		return nil, ErrNotFound
	}
	return work, nil
}

func (s *ContentService) ListWorkExperience(ctx context.Context) ([]model.WorkExperience, error) {
	return s.workRepo.ListAll(ctx)
}

func (s *ContentService) ListPublicWorkExperience(ctx context.Context) ([]model.WorkExperience, error) {
	return s.workRepo.ListActive(ctx)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
