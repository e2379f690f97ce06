package app

import (
	"strings"
	"time"

	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
	"github.com/docuflow/lifecycle-backend/internal/utils"
)

type Config struct {
	JWTSecretKey     string
	TokenTTL         time.Duration
	UploadDir        string
	AvatarDir        string
	AvatarFontPath   string
	MaxUploadBytes   int64
	StateSeedPath    string
	RedisAddr        string
	AssistantWebhook string
	AssistantAPIKey  string
	CORSOrigins      []string
	ServiceName      string
	Environment      string
	Version          string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenTTLSeconds := utils.GetEnvAsInt("TOKEN_TTL", 86400, log)
	maxUploadMB := utils.GetEnvAsInt("MAX_UPLOAD_MB", 50, log)

	var origins []string
	if raw := utils.GetEnv("CORS_ORIGINS", "", log); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	return Config{
		JWTSecretKey:     jwtSecretKey,
		TokenTTL:         time.Duration(tokenTTLSeconds) * time.Second,
		UploadDir:        utils.GetEnv("UPLOAD_DIR", "uploads/files", log),
		AvatarDir:        utils.GetEnv("AVATAR_DIR", "uploads/avatars", log),
		AvatarFontPath:   utils.GetEnv("AVATAR_FONT", "", log),
		MaxUploadBytes:   int64(maxUploadMB) << 20,
		StateSeedPath:    utils.GetEnv("STATE_SEED_PATH", "", log),
		RedisAddr:        utils.GetEnv("REDIS_ADDR", "", log),
		AssistantWebhook: utils.GetEnv("ASSISTANT_WEBHOOK_URL", "", log),
		AssistantAPIKey:  utils.GetEnv("ASSISTANT_API_KEY", "", log),
		CORSOrigins:      origins,
		ServiceName:      utils.GetEnv("SERVICE_NAME", "lifecycle-backend", log),
		Environment:      utils.GetEnv("ENVIRONMENT", "development", log),
		Version:          utils.GetEnv("SERVICE_VERSION", "dev", log),
	}
}
