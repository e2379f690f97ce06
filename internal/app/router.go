package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/docuflow/lifecycle-backend/internal/http"
	"github.com/docuflow/lifecycle-backend/internal/observability"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		TracingEnabled: observability.Enabled(),
		CORSOrigins:    cfg.CORSOrigins,

		AuthHandler:        h.Auth,
		AuthMiddleware:     mw.Auth,
		StateHandler:       h.State,
		EntityHandler:      h.Entity,
		VersionHandler:     h.Version,
		ContributorHandler: h.Contributor,
		FileHandler:        h.File,
		StatsHandler:       h.Stats,
		AssistantHandler:   h.Assistant,
		HealthHandler:      h.Health,
	})
}
