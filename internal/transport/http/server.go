package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SamOhrenberg/AboutSamuel/internal/bootstrap"
	"github.com/SamOhrenberg/AboutSamuel/internal/observability"
	"github.com/SamOhrenberg/AboutSamuel/internal/pkg/jwtutil"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/handler"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(app.Log),
		middleware.CORS(app.Config.CORS.AllowOrigins),
		observability.GinMiddleware(),
	)

	svc := app.Services
	healthHandler := handler.NewHealthHandler(app)
	chatHandler := handler.NewChatHandler(svc.Chat, svc.Resume)
	contentHandler := handler.NewContentHandler(svc.Content)
	adminHandler := handler.NewAdminHandler(svc.Auth, svc.Activity, svc.Embeddings, svc.Imports)
	contactHandler := handler.NewContactHandler(svc.Contact)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(router, app.Config.Auth.JWTSecret, chatHandler, contentHandler, contactHandler, adminHandler)
	return router
}

// RegisterRoutes mounts the public chat and content API plus the admin group.
func RegisterRoutes(
	router gin.IRouter,
	jwtSecret string,
	chatHandler *handler.ChatHandler,
	contentHandler *handler.ContentHandler,
	contactHandler *handler.ContactHandler,
	adminHandler *handler.AdminHandler,
) {
	chatGroup := router.Group("/chat")
	chatGroup.POST("", chatHandler.Chat)
	chatGroup.POST("/stream", chatHandler.Stream)
	chatGroup.GET("/resume", chatHandler.Resume)
	chatGroup.GET("/resume/:jobTitle", chatHandler.Resume)

	router.GET("/projects", contentHandler.PublicProjects)
	router.GET("/projects/featured", contentHandler.FeaturedProjects)
	router.GET("/work-experience", contentHandler.PublicWorkExperience)
	router.POST("/contact", contactHandler.Submit)

	router.POST("/admin/login", adminHandler.Login)

	admin := router.Group("/admin")
	admin.Use(middleware.BearerAuth(jwtSecret), middleware.RequireRole(jwtutil.RoleAdmin))

	admin.GET("/information", contentHandler.ListInformation)
	admin.POST("/information", contentHandler.CreateInformation)
	admin.GET("/information/gaps", contentHandler.ListInformationGaps)
	admin.POST("/information/import", adminHandler.ImportPDF)
	admin.GET("/information/:id", contentHandler.GetInformation)
	admin.PUT("/information/:id", contentHandler.UpdateInformation)
	admin.DELETE("/information/:id", contentHandler.DeleteInformation)
	admin.POST("/information/:id/keywords", contentHandler.AddKeyword)
	admin.DELETE("/information/:id/keywords/:keywordId", contentHandler.DeleteKeyword)

	admin.GET("/projects", contentHandler.ListProjects)
	admin.POST("/projects", contentHandler.CreateProject)
	admin.GET("/projects/:id", contentHandler.GetProject)
	admin.PUT("/projects/:id", contentHandler.UpdateProject)
	admin.DELETE("/projects/:id", contentHandler.DeleteProject)
	admin.PATCH("/projects/reorder", contentHandler.ReorderProjects)
	admin.PATCH("/projects/:id/restore", contentHandler.RestoreProject)

	admin.GET("/work-experience", contentHandler.ListWorkExperience)
	admin.POST("/work-experience", contentHandler.CreateWorkExperience)
	admin.GET("/work-experience/:id", contentHandler.GetWorkExperience)
	admin.PUT("/work-experience/:id", contentHandler.UpdateWorkExperience)
	admin.DELETE("/work-experience/:id", contentHandler.DeleteWorkExperience)
	admin.PATCH("/work-experience/reorder", contentHandler.ReorderWorkExperience)

	admin.GET("/chats", adminHandler.ListChats)
	admin.GET("/chats/stats", adminHandler.ChatStats)
	admin.GET("/contacts", adminHandler.ListContacts)
	admin.PUT("/contacts/:id/handled", adminHandler.MarkContactHandled)
	admin.POST("/generate-embeddings", adminHandler.GenerateEmbeddings)
}
