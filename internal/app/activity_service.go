package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/repository"
)

const (
	defaultSessionPageSize = 20
	maxSessionPageSize     = 100
	contactListLimit       = 200
)

// ActivityService exposes recorded chat sessions and contact requests to the admin.
type ActivityService struct {
	exchangeRepo *repository.ChatExchangeRepository
	contactRepo  *repository.ContactRequestRepository
	now          func() time.Time
}

func NewActivityService(
	exchangeRepo *repository.ChatExchangeRepository,
	contactRepo *repository.ContactRequestRepository,
) *ActivityService {
	return &ActivityService{exchangeRepo: exchangeRepo, contactRepo: contactRepo, now: time.Now}
}

// ChatStats reports totals with "today" measured from midnight UTC.
func (s *ActivityService) ChatStats(ctx context.Context) (*repository.ChatStats, error) {
	midnight := s.now().UTC().Truncate(24 * time.Hour)
	return s.exchangeRepo.Stats(ctx, midnight)
}

type SessionPage struct {
	Sessions []repository.ChatSession `json:"sessions"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
}

func (s *ActivityService) ListChatSessions(ctx context.Context, page, pageSize int, errorsOnly bool) (*SessionPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSessionPageSize
	}
	if pageSize > maxSessionPageSize {
		pageSize = maxSessionPageSize
	}

	sessions, total, err := s.exchangeRepo.ListSessions(ctx, repository.SessionQuery{
		Page:       page,
		PageSize:   pageSize,
		ErrorsOnly: errorsOnly,
	})
	if err != nil {
		return nil, err
	}
	return &SessionPage{Sessions: sessions, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *ActivityService) ListContacts(ctx context.Context, unhandledOnly bool) ([]model.ContactRequest, error) {
	return s.contactRepo.List(ctx, unhandledOnly, contactListLimit)
}

func (s *ActivityService) MarkContactHandled(ctx context.Context, id uuid.UUID) error {
	ok, err := s.contactRepo.MarkHandled(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
