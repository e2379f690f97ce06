package app

import (
	"gorm.io/gorm"

	httpH "github.com/docuflow/lifecycle-backend/internal/http/handlers"
)

type Handlers struct {
	Auth        *httpH.AuthHandler
	State       *httpH.StateHandler
	Entity      *httpH.EntityHandler
	Version     *httpH.VersionHandler
	Contributor *httpH.ContributorHandler
	File        *httpH.FileHandler
	Stats       *httpH.StatsHandler
	Assistant   *httpH.AssistantHandler
	Health      *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, s Services) Handlers {
	return Handlers{
		Auth:        httpH.NewAuthHandler(s.Auth),
		State:       httpH.NewStateHandler(s.State),
		Entity:      httpH.NewEntityHandler(s.Entity, s.Stats),
		Version:     httpH.NewVersionHandler(s.Version),
		Contributor: httpH.NewContributorHandler(s.Contributor),
		File:        httpH.NewFileHandler(s.File),
		Stats:       httpH.NewStatsHandler(s.Stats),
		Assistant:   httpH.NewAssistantHandler(s.Assistant, s.Auth),
		Health:      httpH.NewHealthHandler(db),
	}
}
