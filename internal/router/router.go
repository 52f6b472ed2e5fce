// Package router assembles the HTTP route table.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/spi-admin-api/internal/handler"
	"github.com/noah-isme/spi-admin-api/internal/middleware"
	"github.com/noah-isme/spi-admin-api/internal/models"
	"github.com/noah-isme/spi-admin-api/internal/service"
	"github.com/noah-isme/spi-admin-api/pkg/config"
	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
	"github.com/noah-isme/spi-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/spi-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/spi-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/spi-admin-api/pkg/response"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Admins    *handler.AdminHandler
	Students  *handler.StudentHandler
	Children  *handler.ChildHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
	Photos    *handler.PhotoHandler
}

// Deps are the collaborators needed to build the engine.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Auth     *service.AuthService
	Metrics  *service.MetricsService
	Handlers Handlers
}

// New builds the gin engine with global middleware and all routes.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Features.Metrics {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})

	h := deps.Handlers
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	if cfg.Features.Metrics {
		r.GET("/metrics", h.Health.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Session(deps.Auth, cfg.Session.CookieName))

	authed := middleware.RequireSession()
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", authed, h.Auth.Me)

	admins := api.Group("/admins", authed)
	admins.GET("", h.Admins.List)
	admins.GET("/:id", h.Admins.Get)
	admins.POST("", adminOnly, h.Admins.Create)
	admins.PUT("/:id", adminOnly, h.Admins.Update)
	admins.DELETE("/:id", adminOnly, h.Admins.Delete)

	students := api.Group("/students")
	if cfg.Features.PublicEnrollment {
		students.POST("", h.Students.Create)
	} else {
		students.POST("", authed, h.Students.Create)
	}
	students.GET("", authed, h.Students.List)
	students.GET("/:id", authed, h.Students.Get)
	students.GET("/:id/children", authed, h.Children.ListForStudent)
	students.PUT("/:id", authed, h.Students.Update)
	students.DELETE("/:id", authed, h.Students.Delete)
	if h.Photos != nil {
		students.POST("/:id/photo", authed, h.Photos.Upload)
		students.GET("/:id/photo", authed, h.Photos.Download)
		students.GET("/:id/photo-link", authed, h.Photos.Link)
		api.GET("/files/photos/:token", h.Photos.Signed)
	}

	children := api.Group("/children", authed)
	children.GET("", h.Children.List)
	children.GET("/student/:student_id", h.Children.ListByStudent)
	children.GET("/:id", h.Children.Get)
	children.POST("", h.Children.Create)
	children.PUT("/:id", h.Children.Update)
	children.DELETE("/:id", h.Children.Delete)

	api.GET("/stats", authed, h.Dashboard.Stats)
	api.GET("/audit-logs", adminOnly, h.Dashboard.AuditLogs)
	if cfg.Features.Reports {
		api.GET("/reports/:kind", authed, h.Dashboard.Report)
	}

	return r
}
