package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondDomainError maps the domain error taxonomy onto HTTP statuses.
// Configuration errors surface as 400 so a missing state registry reads as a
// caller-fixable condition rather than a server fault.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrValidation):
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, types.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, types.ErrConfiguration):
		RespondError(c, http.StatusBadRequest, "not_configured", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
