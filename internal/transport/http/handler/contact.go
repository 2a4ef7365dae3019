package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamOhrenberg/AboutSamuel/internal/app"
	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/response"
)

type ContactSubmitter interface {
	Submit(ctx context.Context, email, message string) (*model.ContactRequest, error)
}

type ContactHandler struct {
	contacts ContactSubmitter
}

type ContactFormRequest struct {
	Email   string `json:"email" binding:"required,max=256"`
	Message string `json:"message" binding:"max=4000"`
}

func NewContactHandler(contacts ContactSubmitter) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit handles the public contact form.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	created, err := h.contacts.Submit(c.Request.Context(), req.Email, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidEmail):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, app.ErrInvalidEmail.Error())
		case errors.Is(err, app.ErrContactUnavailable):
			response.Error(c, http.StatusServiceUnavailable, response.CodeContactUnavailable, app.ErrContactUnavailable.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "contact request failed")
		}
		return
	}
	response.OK(c, gin.H{"id": created.ID})
}
