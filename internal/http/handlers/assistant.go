package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/lifecycle-backend/internal/http/response"
	"github.com/docuflow/lifecycle-backend/internal/pkg/ctxutil"
	"github.com/docuflow/lifecycle-backend/internal/services"
)

type AssistantHandler struct {
	assistantService services.AssistantService
	authService      services.AuthService
}

func NewAssistantHandler(assistantService services.AssistantService, authService services.AuthService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService, authService: authService}
}

func (ah *AssistantHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	contributor, err := ah.authService.Me(c.Request.Context(), rd.ContributorID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	reply, err := ah.assistantService.Chat(c.Request.Context(), contributor, req.Message)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, reply)
}

func (ah *AssistantHandler) History(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	history := ah.assistantService.History(c.Request.Context(), rd.ContributorID)
	response.RespondOK(c, gin.H{"history": history})
}

func (ah *AssistantHandler) ClearHistory(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	ah.assistantService.ClearHistory(c.Request.Context(), rd.ContributorID)
	response.RespondOK(c, gin.H{"ok": true})
}
