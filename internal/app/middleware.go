package app

import (
	httpMW "github.com/docuflow/lifecycle-backend/internal/http/middleware"
	"github.com/docuflow/lifecycle-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth),
	}
}
