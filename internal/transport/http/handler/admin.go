package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SamOhrenberg/AboutSamuel/internal/app"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/response"
)

const maxPDFSize = 10 << 20 // 10 MB

type AdminHandler struct {
	auth       *app.AdminAuthService
	activity   *app.ActivityService
	embeddings *app.EmbeddingService
	imports    *app.ImportService
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required,max=128"`
}

func NewAdminHandler(
	auth *app.AdminAuthService,
	activity *app.ActivityService,
	embeddings *app.EmbeddingService,
	imports *app.ImportService,
) *AdminHandler {
	return &AdminHandler{
		auth:       auth,
		activity:   activity,
		embeddings: embeddings,
		imports:    imports,
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.auth.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
		case errors.Is(err, app.ErrAdminDisabled):
			response.Error(c, http.StatusServiceUnavailable, response.CodeAdminDisabled, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}
	response.OK(c, result)
}

// ListChats pages through chat sessions, newest first.
// Query: page, page_size, errorsOnly.
func (h *AdminHandler) ListChats(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	errorsOnly, _ := strconv.ParseBool(c.Query("errorsOnly"))

	result, err := h.activity.ListChatSessions(c.Request.Context(), page, pageSize, errorsOnly)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list chats failed")
		return
	}
	response.OK(c, result)
}

func (h *AdminHandler) ChatStats(c *gin.Context) {
	stats, err := h.activity.ChatStats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat stats failed")
		return
	}
	response.OK(c, stats)
}

func (h *AdminHandler) ListContacts(c *gin.Context) {
	unhandled, _ := strconv.ParseBool(c.Query("unhandled"))
	contacts, err := h.activity.ListContacts(c.Request.Context(), unhandled)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list contacts failed")
		return
	}
	response.OK(c, contacts)
}

func (h *AdminHandler) MarkContactHandled(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.activity.MarkContactHandled(c.Request.Context(), id); err != nil {
		writeContentError(c, err, "update contact failed")
		return
	}
	response.OK(c, gin.H{"handled_id": id})
}

func (h *AdminHandler) GenerateEmbeddings(c *gin.Context) {
	report, err := h.embeddings.GenerateMissing(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, "generate embeddings failed: "+err.Error())
		return
	}
	response.OK(c, report)
}

// ImportPDF accepts a multipart form with "file" (PDF) and stores its text as snippets.
func (h *AdminHandler) ImportPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	result, err := h.imports.ImportPDF(c.Request.Context(), f)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrImportEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "PDF contains no extractable text")
		case errors.Is(err, app.ErrImportUnreadable):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from PDF")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "import failed")
		}
		return
	}
	response.OK(c, result)
}
