package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docuflow/lifecycle-backend/internal/http/response"
	"github.com/docuflow/lifecycle-backend/internal/services"
)

type StateHandler struct {
	stateService services.StateService
}

func NewStateHandler(stateService services.StateService) *StateHandler {
	return &StateHandler{stateService: stateService}
}

func (sh *StateHandler) List(c *gin.Context) {
	states, err := sh.stateService.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"states": states})
}

func (sh *StateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	state, err := sh.stateService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

func (sh *StateHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Label       string `json:"label"`
		Color       string `json:"color"`
		Order       int    `json:"order"`
		Description string `json:"description"`
		IsInitial   bool   `json:"is_initial"`
		IsFinal     bool   `json:"is_final"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	state, err := sh.stateService.Create(c.Request.Context(), services.StateInput{
		Name:        req.Name,
		Label:       req.Label,
		Color:       req.Color,
		Order:       req.Order,
		Description: req.Description,
		IsInitial:   req.IsInitial,
		IsFinal:     req.IsFinal,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"state": state})
}

func (sh *StateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Label       *string `json:"label"`
		Color       *string `json:"color"`
		Order       *int    `json:"order"`
		Description *string `json:"description"`
		IsInitial   *bool   `json:"is_initial"`
		IsFinal     *bool   `json:"is_final"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	state, err := sh.stateService.Update(c.Request.Context(), id, services.StateUpdate{
		Name:        req.Name,
		Label:       req.Label,
		Color:       req.Color,
		Order:       req.Order,
		Description: req.Description,
		IsInitial:   req.IsInitial,
		IsFinal:     req.IsFinal,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

func (sh *StateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := sh.stateService.Delete(c.Request.Context(), id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
