package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/lifecycle-backend/internal/http/response"
	"github.com/docuflow/lifecycle-backend/internal/pkg/ctxutil"
	"github.com/docuflow/lifecycle-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	contributor, token, err := ah.authService.Register(c.Request.Context(), services.ContributorInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"contributor": contributor,
		"token":       token,
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	contributor, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
		return
	}
	response.RespondOK(c, gin.H{
		"contributor": contributor,
		"token":       token,
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	contributor, err := ah.authService.Me(c.Request.Context(), rd.ContributorID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contributor": contributor})
}

func (ah *AuthHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	contributor, err := ah.authService.UpdateProfile(c.Request.Context(), rd.ContributorID, services.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"contributor": contributor})
}

func (ah *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := ah.authService.ChangePassword(c.Request.Context(), rd.ContributorID, req.CurrentPassword, req.NewPassword); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
