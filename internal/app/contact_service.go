package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/observability"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
)

var (
	ErrInvalidEmail       = errors.New("a valid email address is required")
	ErrContactUnavailable = errors.New("contact request could not be queued")
)

const contactPublishTimeout = 3 * time.Second

// ContactService accepts contact requests from the public form. Requests are
// queued and persisted by the contact worker.
type ContactService struct {
	publisher Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewContactService(publisher Publisher, log *logger.Logger) *ContactService {
	return &ContactService{
		publisher: publisher,
		log:       log.With("component", "contact"),
		now:       time.Now,
	}
}

func (s *ContactService) Submit(ctx context.Context, email, message string) (*model.ContactRequest, error) {
	req, err := newContactRequest(email, message, s.now())
	if err != nil {
		return nil, err
	}
	if s.publisher == nil {
		return nil, ErrContactUnavailable
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), contactPublishTimeout)
	defer cancel()
	err = s.publisher.Publish(pubCtx, req)
	observability.ObserveQueue("contact", "publish", err == nil)
	if err != nil {
		s.log.Error("publish contact request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrContactUnavailable, err)
	}
	s.log.Info("contact request queued", "id", req.ID)
	return &req, nil
}

// newContactRequest validates the address and builds the queued record.
func newContactRequest(email, message string, now time.Time) (model.ContactRequest, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.ContactRequest{}, ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return model.ContactRequest{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	req := model.ContactRequest{
		ID:        uuid.New(),
		Email:     addr.Address,
		CreatedAt: now.UTC(),
	}
	if msg := strings.TrimSpace(message); msg != "" {
		req.Message = &msg
	}
	return req, nil
}
