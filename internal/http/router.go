package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
	httpH "github.com/docuflow/lifecycle-backend/internal/http/handlers"
	httpMW "github.com/docuflow/lifecycle-backend/internal/http/middleware"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	AuthHandler        *httpH.AuthHandler
	AuthMiddleware     *httpMW.AuthMiddleware
	StateHandler       *httpH.StateHandler
	EntityHandler      *httpH.EntityHandler
	VersionHandler     *httpH.VersionHandler
	ContributorHandler *httpH.ContributorHandler
	FileHandler        *httpH.FileHandler
	StatsHandler       *httpH.StatsHandler
	AssistantHandler   *httpH.AssistantHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.Health)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/auth/me", cfg.AuthHandler.Me)
			protected.PUT("/auth/me", cfg.AuthHandler.UpdateMe)
			protected.PUT("/auth/password", cfg.AuthHandler.ChangePassword)
		}

		if cfg.StateHandler != nil {
			protected.GET("/states", cfg.StateHandler.List)
			protected.GET("/states/:id", cfg.StateHandler.Get)
			admin := protected.Group("/")
			admin.Use(cfg.AuthMiddleware.RequireRole(types.ContributorRoleAdmin))
			admin.POST("/states", cfg.StateHandler.Create)
			admin.PUT("/states/:id", cfg.StateHandler.Update)
			admin.DELETE("/states/:id", cfg.StateHandler.Delete)
		}

		if cfg.EntityHandler != nil {
			protected.GET("/entities", cfg.EntityHandler.List)
			protected.POST("/entities", cfg.EntityHandler.Create)
			protected.GET("/entities/:id", cfg.EntityHandler.Get)
			protected.PUT("/entities/:id", cfg.EntityHandler.Update)
			protected.DELETE("/entities/:id", cfg.EntityHandler.Delete)
			protected.POST("/entities/:id/state", cfg.EntityHandler.ChangeState)
			protected.POST("/entities/:id/contributors", cfg.EntityHandler.Assign)
			protected.DELETE("/entities/:id/contributors/:contributorId", cfg.EntityHandler.Unassign)
			protected.GET("/entities/:id/history", cfg.EntityHandler.History)
			protected.GET("/entities/:id/timeline", cfg.EntityHandler.Timeline)
		}

		if cfg.VersionHandler != nil {
			protected.GET("/entities/:id/versions", cfg.VersionHandler.ListByEntity)
			protected.POST("/entities/:id/versions", cfg.VersionHandler.Create)
			protected.GET("/entities/:id/versions/compare", cfg.VersionHandler.Compare)
			protected.POST("/entities/:id/versions/:versionId/restore", cfg.VersionHandler.Restore)
			protected.GET("/versions/:versionId", cfg.VersionHandler.Get)
		}

		if cfg.FileHandler != nil {
			protected.POST("/versions/:versionId/files", cfg.FileHandler.Upload)
			protected.GET("/versions/:versionId/files", cfg.FileHandler.ListByVersion)
			protected.GET("/files/:id/download", cfg.FileHandler.Download)
			protected.DELETE("/files/:id", cfg.FileHandler.Delete)
		}

		if cfg.ContributorHandler != nil {
			protected.GET("/contributors", cfg.ContributorHandler.List)
			protected.GET("/contributors/:id", cfg.ContributorHandler.Get)
			protected.GET("/contributors/:id/stats", cfg.ContributorHandler.Stats)
			admin := protected.Group("/")
			admin.Use(cfg.AuthMiddleware.RequireRole(types.ContributorRoleAdmin))
			admin.POST("/contributors", cfg.ContributorHandler.Create)
			admin.PUT("/contributors/:id", cfg.ContributorHandler.Update)
			admin.POST("/contributors/:id/reset-password", cfg.ContributorHandler.ResetPassword)
			admin.DELETE("/contributors/:id", cfg.ContributorHandler.Delete)
		}

		if cfg.StatsHandler != nil {
			protected.GET("/stats/dashboard", cfg.StatsHandler.Dashboard)
			protected.GET("/stats/activity", cfg.StatsHandler.Activity)
			protected.GET("/entities/:id/stats", cfg.StatsHandler.Entity)
		}

		if cfg.AssistantHandler != nil {
			protected.POST("/assistant/chat", cfg.AssistantHandler.Chat)
			protected.GET("/assistant/history", cfg.AssistantHandler.History)
			protected.DELETE("/assistant/history", cfg.AssistantHandler.ClearHistory)
		}
	}

	return r
}
