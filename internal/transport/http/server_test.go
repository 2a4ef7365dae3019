package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamOhrenberg/AboutSamuel/internal/app"
	"github.com/SamOhrenberg/AboutSamuel/internal/model"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/database"
	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
	"github.com/SamOhrenberg/AboutSamuel/internal/repository"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/handler"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/response"
)

const testSecret = "test-secret"

type noopChat struct{}

func (noopChat) Chat(context.Context, app.ChatInput) app.ChatReply {
	return app.ChatReply{Message: "ok"}
}

func (noopChat) StreamChat(context.Context, app.ChatInput, func(app.StreamEvent) error) error {
	return nil
}

type noopResume struct{}

func (noopResume) Generate(context.Context, string) (string, error) { return "<p></p>", nil }

// queueToRepo stands in for the broker and contact worker.
type queueToRepo struct {
	repo *repository.ContactRequestRepository
}

func (q queueToRepo) Publish(ctx context.Context, v interface{}) error {
	req := v.(model.ContactRequest)
	return q.repo.Create(ctx, &req)
}

type testServer struct {
	router    *gin.Engine
	contacts  *repository.ContactRequestRepository
	exchanges *repository.ChatExchangeRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	infoRepo := repository.NewInformationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	workRepo := repository.NewWorkExperienceRepository(db)
	contactRepo := repository.NewContactRequestRepository(db)
	exchangeRepo := repository.NewChatExchangeRepository(db)

	hash, err := app.HashPassword("correct horse")
	require.NoError(t, err)

	log := logger.NewNop()
	chatHandler := handler.NewChatHandler(noopChat{}, noopResume{})
	contentHandler := handler.NewContentHandler(app.NewContentService(infoRepo, projectRepo, workRepo))
	adminHandler := handler.NewAdminHandler(
		app.NewAdminAuthService(hash, testSecret, time.Hour),
		app.NewActivityService(exchangeRepo, contactRepo),
		app.NewEmbeddingService(nil, "embed", infoRepo, projectRepo, workRepo, log),
		app.NewImportService(infoRepo, log),
	)

	contactHandler := handler.NewContactHandler(app.NewContactService(queueToRepo{repo: contactRepo}, log))

	router := gin.New()
	RegisterRoutes(router, testSecret, chatHandler, contentHandler, contactHandler, adminHandler)
	return &testServer{router: router, contacts: contactRepo, exchanges: exchangeRepo}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.APIResponse) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp response.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w, resp := s.do(nethttp.MethodPost, "/admin/login", "", gin.H{"password": "correct horse"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	data := resp.Data.(map[string]interface{})
	return data["token"].(string)
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(nethttp.MethodPost, "/admin/login", "", gin.H{"password": "wrong"})
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeInvalidCredentials, resp.Code)

	assert.NotEmpty(t, s.login(t))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(nethttp.MethodGet, "/admin/information", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeUnauthorized, resp.Code)

	w, _ = s.do(nethttp.MethodGet, "/admin/information", "garbage", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
}

func TestInformationCRUDAndGaps(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w, resp := s.do(nethttp.MethodPost, "/admin/information", token, gin.H{
		"text":     "Samuel mentors junior engineers.",
		"keywords": []string{"mentoring", "leadership"},
	})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	id := resp.Data.(map[string]interface{})["id"].(string)

	w, _ = s.do(nethttp.MethodPut, "/admin/information/"+id, token, gin.H{"text": "Samuel mentors engineers.", "keywords": []string{"mentoring"}})
	assert.Equal(t, nethttp.StatusOK, w.Code)

	w, _ = s.do(nethttp.MethodGet, "/admin/information/not-a-uuid", token, nil)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w, resp = s.do(nethttp.MethodGet, "/admin/information/"+uuid.NewString(), token, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeNotFound, resp.Code)

	w, resp = s.do(nethttp.MethodGet, "/admin/information/gaps", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Empty(t, resp.Data)

	w, _ = s.do(nethttp.MethodDelete, "/admin/information/"+id, token, nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestProjectsPublicAndAdmin(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w, resp := s.do(nethttp.MethodPost, "/admin/work-experience", token, gin.H{
		"employer":     "Acme",
		"title":        "Engineer",
		"achievements": []string{"Shipped things"},
	})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	workID := resp.Data.(map[string]interface{})["id"].(string)

	w, _ = s.do(nethttp.MethodPost, "/admin/projects", token, gin.H{
		"title":              "Portfolio",
		"summary":            "This site.",
		"tech_stack":         []string{"Go", "Vue.js"},
		"is_featured":        true,
		"work_experience_id": workID,
	})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(nethttp.MethodPost, "/admin/projects", token, gin.H{
		"title":     "Hidden",
		"is_active": false,
	})
	require.Equal(t, nethttp.StatusOK, w.Code)

	w, resp = s.do(nethttp.MethodGet, "/projects", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	projects := resp.Data.([]interface{})
	require.Len(t, projects, 1)
	first := projects[0].(map[string]interface{})
	assert.Equal(t, "Portfolio", first["title"])
	assert.Equal(t, []interface{}{"Go", "Vue.js"}, first["tech_stack"])

	w, resp = s.do(nethttp.MethodGet, "/projects/featured", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 1)

	w, resp = s.do(nethttp.MethodGet, "/work-experience", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	work := resp.Data.([]interface{})
	require.Len(t, work, 1)
	assert.Len(t, work[0].(map[string]interface{})["projects"], 1)

	w, _ = s.do(nethttp.MethodPost, "/admin/projects", token, gin.H{"summary": "no title"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestContactsAndChats(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	req := &model.ContactRequest{Email: "visitor@example.com", CreatedAt: time.Now()}
	require.NoError(t, s.contacts.Create(context.Background(), req))

	w, resp := s.do(nethttp.MethodGet, "/admin/contacts?unhandled=true", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 1)

	w, _ = s.do(nethttp.MethodPut, "/admin/contacts/"+req.ID.String()+"/handled", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)

	w, _ = s.do(nethttp.MethodPut, "/admin/contacts/"+uuid.NewString()+"/handled", token, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)

	w, resp = s.do(nethttp.MethodGet, "/admin/chats?page=1&page_size=5&errorsOnly=true", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	page := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 0, page["total"])
	assert.EqualValues(t, 5, page["page_size"])
}

func TestImportRejectsNonPDF(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "resume.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("plain text"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/admin/information/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "only PDF files")
}

func TestChatRouteIsPublic(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(nethttp.MethodPost, "/chat", "", gin.H{"message": "hi"})
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestProjectSoftDeleteRestoreAndReorder(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	ids := make([]string, 0, 2)
	for _, title := range []string{"Alpha", "Beta"} {
		w, resp := s.do(nethttp.MethodPost, "/admin/projects", token, gin.H{"title": title})
		require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
		ids = append(ids, resp.Data.(map[string]interface{})["id"].(string))
	}

	w, _ := s.do(nethttp.MethodDelete, "/admin/projects/"+ids[0], token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)

	_, resp := s.do(nethttp.MethodGet, "/projects", "", nil)
	assert.Len(t, resp.Data.([]interface{}), 1)
	_, resp = s.do(nethttp.MethodGet, "/admin/projects", token, nil)
	assert.Len(t, resp.Data.([]interface{}), 2, "deleted projects stay visible to the admin")

	w, resp = s.do(nethttp.MethodPatch, "/admin/projects/"+ids[0]+"/restore", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, resp.Data.(map[string]interface{})["is_active"])

	w, _ = s.do(nethttp.MethodPatch, "/admin/projects/"+uuid.NewString()+"/restore", token, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)

	w, _ = s.do(nethttp.MethodPatch, "/admin/projects/reorder", token, []gin.H{
		{"project_id": ids[0], "display_order": 1},
		{"project_id": ids[1], "display_order": 0},
	})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())

	_, resp = s.do(nethttp.MethodGet, "/projects", "", nil)
	projects := resp.Data.([]interface{})
	require.Len(t, projects, 2)
	assert.Equal(t, "Beta", projects[0].(map[string]interface{})["title"])

	w, _ = s.do(nethttp.MethodPatch, "/admin/projects/reorder", token, []gin.H{{"display_order": 1}})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestWorkExperienceReorder(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	ids := make([]string, 0, 2)
	for _, employer := range []string{"First", "Second"} {
		w, resp := s.do(nethttp.MethodPost, "/admin/work-experience", token, gin.H{"employer": employer, "title": "Dev"})
		require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
		ids = append(ids, resp.Data.(map[string]interface{})["id"].(string))
	}

	w, _ := s.do(nethttp.MethodPatch, "/admin/work-experience/reorder", token, []string{ids[1], ids[0]})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())

	_, resp := s.do(nethttp.MethodGet, "/work-experience", "", nil)
	work := resp.Data.([]interface{})
	require.Len(t, work, 2)
	assert.Equal(t, "Second", work[0].(map[string]interface{})["employer"])

	w, _ = s.do(nethttp.MethodPatch, "/admin/work-experience/reorder", token, []string{})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestInformationKeywordRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w, resp := s.do(nethttp.MethodPost, "/admin/information", token, gin.H{"text": "Samuel bakes bread."})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	id := resp.Data.(map[string]interface{})["id"].(string)

	w, resp = s.do(nethttp.MethodPost, "/admin/information/"+id+"/keywords", token, gin.H{"text": "sourdough"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	keywordID := resp.Data.(map[string]interface{})["id"].(string)

	w, _ = s.do(nethttp.MethodPost, "/admin/information/"+id+"/keywords", token, gin.H{"text": ""})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w, _ = s.do(nethttp.MethodDelete, "/admin/information/"+id+"/keywords/not-a-uuid", token, nil)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w, _ = s.do(nethttp.MethodDelete, "/admin/information/"+id+"/keywords/"+keywordID, token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)

	w, _ = s.do(nethttp.MethodDelete, "/admin/information/"+id+"/keywords/"+keywordID, token, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestChatStats(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	require.NoError(t, s.exchanges.Create(context.Background(), &model.ChatExchange{
		Message:        "hi",
		ReceivedAt:     time.Now().UTC(),
		ResponseTookMs: 120,
	}))

	w, resp := s.do(nethttp.MethodGet, "/admin/chats/stats", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	stats := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_messages"])
	assert.EqualValues(t, 1, stats["messages_today"])
	assert.EqualValues(t, 120, stats["avg_response_ms"])
}

func TestPublicContactForm(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(nethttp.MethodPost, "/contact", "", gin.H{"email": "not an email"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w, _ = s.do(nethttp.MethodPost, "/contact", "", gin.H{"email": "visitor@example.com", "message": "Hello!"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())

	stored, err := s.contacts.List(context.Background(), true, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "visitor@example.com", stored[0].Email)
	require.NotNil(t, stored[0].Message)
	assert.Equal(t, "Hello!", *stored[0].Message)
}
