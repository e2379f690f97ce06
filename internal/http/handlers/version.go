package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docuflow/lifecycle-backend/internal/http/response"
	"github.com/docuflow/lifecycle-backend/internal/pkg/ctxutil"
	"github.com/docuflow/lifecycle-backend/internal/services"
)

type VersionHandler struct {
	versionService services.VersionService
}

func NewVersionHandler(versionService services.VersionService) *VersionHandler {
	return &VersionHandler{versionService: versionService}
}

func (vh *VersionHandler) ListByEntity(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	versions, err := vh.versionService.ListByEntity(c.Request.Context(), entityID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": versions})
}

func (vh *VersionHandler) Create(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Title    string         `json:"title"`
		Content  string         `json:"content"`
		Summary  string         `json:"summary"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	version, err := vh.versionService.Create(c.Request.Context(), rd.ContributorID, entityID, services.VersionInput{
		Title:    req.Title,
		Content:  req.Content,
		Summary:  req.Summary,
		Metadata: req.Metadata,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"version": version})
}

func (vh *VersionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("versionId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_version_id", err)
		return
	}
	version, err := vh.versionService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"version": version})
}

func (vh *VersionHandler) Restore(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	versionID, err := uuid.Parse(c.Param("versionId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_version_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	version, err := vh.versionService.Restore(c.Request.Context(), rd.ContributorID, entityID, versionID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"version": version})
}

func (vh *VersionHandler) Compare(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	fromID, err := uuid.Parse(c.Query("from"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_from_id", err)
		return
	}
	toID, err := uuid.Parse(c.Query("to"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_to_id", err)
		return
	}
	diff, err := vh.versionService.Compare(c.Request.Context(), entityID, fromID, toID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"diff": diff})
}
