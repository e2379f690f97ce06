package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/docuflow/lifecycle-backend/internal/clients/redisc"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
	"github.com/docuflow/lifecycle-backend/internal/services"
)

type Services struct {
	State       services.StateService
	Entity      services.EntityService
	Version     services.VersionService
	Contributor services.ContributorService
	Auth        services.AuthService
	File        services.FileService
	Stats       services.StatsService
	Avatar      services.AvatarService
	Assistant   services.AssistantService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	var cache redisc.Cache
	if cfg.RedisAddr != "" {
		c, err := redisc.New(log, cfg.RedisAddr)
		if err != nil {
			// The stats cache is an optimization, not a dependency.
			log.Warn("Redis unavailable, stats caching disabled", "error", err)
		} else {
			cache = c
		}
	}

	avatarService, err := services.NewAvatarService(log, cfg.AvatarDir, cfg.AvatarFontPath)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	fileService, err := services.NewFileService(db, log, r.File, r.Version, r.History, cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return Services{}, fmt.Errorf("init file service: %w", err)
	}

	stateService := services.NewStateService(db, log, r.State, r.Entity)
	entityService := services.NewEntityService(db, log, r.Entity, r.State, r.Version, r.History, r.Assignment, r.Contributor, nil)
	versionService := services.NewVersionService(db, log, r.Entity, r.Version, r.History)
	contributorService := services.NewContributorService(db, log, r.Contributor, r.Entity, r.Version, r.File, r.History, r.Assignment, avatarService)
	authService := services.NewAuthService(db, log, r.Contributor, contributorService, cfg.JWTSecretKey, cfg.TokenTTL)
	statsService := services.NewStatsService(db, log, r.Entity, r.Version, r.File, r.History, r.Contributor, r.State, cache)
	assistantService := services.NewAssistantService(log, cfg.AssistantWebhook, cfg.AssistantAPIKey)

	return Services{
		State:       stateService,
		Entity:      entityService,
		Version:     versionService,
		Contributor: contributorService,
		Auth:        authService,
		File:        fileService,
		Stats:       statsService,
		Avatar:      avatarService,
		Assistant:   assistantService,
	}, nil
}
