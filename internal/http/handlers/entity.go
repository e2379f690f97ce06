package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docuflow/lifecycle-backend/internal/data/repos"
	"github.com/docuflow/lifecycle-backend/internal/http/response"
	"github.com/docuflow/lifecycle-backend/internal/pkg/ctxutil"
	"github.com/docuflow/lifecycle-backend/internal/services"
)

type EntityHandler struct {
	entityService services.EntityService
	statsService  services.StatsService
}

func NewEntityHandler(entityService services.EntityService, statsService services.StatsService) *EntityHandler {
	return &EntityHandler{entityService: entityService, statsService: statsService}
}

func (eh *EntityHandler) List(c *gin.Context) {
	filter := repos.EntityFilter{
		Type:     c.Query("type"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
		SortDesc: c.Query("sort_dir") != "asc",
	}
	if raw := c.Query("state_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_state_id", err)
			return
		}
		filter.StateID = id
	}
	if raw := c.Query("contributor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_contributor_id", err)
			return
		}
		filter.ContributorID = id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	entities, total, err := eh.entityService.List(c.Request.Context(), filter)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"entities": entities,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (eh *EntityHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	entity, err := eh.entityService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entity": entity})
}

func (eh *EntityHandler) Create(c *gin.Context) {
	var req struct {
		Name         string         `json:"name"`
		Type         string         `json:"type"`
		Description  string         `json:"description"`
		Priority     string         `json:"priority"`
		DueDate      *time.Time     `json:"due_date"`
		Tags         []string       `json:"tags"`
		Metadata     map[string]any `json:"metadata"`
		Content      string         `json:"content"`
		Summary      string         `json:"summary"`
		Contributors []struct {
			ID   uuid.UUID `json:"id"`
			Role string    `json:"role"`
		} `json:"contributors"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	contributors := make([]services.ContributorAssignment, 0, len(req.Contributors))
	for _, cr := range req.Contributors {
		contributors = append(contributors, services.ContributorAssignment{ID: cr.ID, Role: cr.Role})
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	entity, err := eh.entityService.Create(c.Request.Context(), rd.ContributorID, services.EntityInput{
		Name:         req.Name,
		Type:         req.Type,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		Tags:         req.Tags,
		Metadata:     req.Metadata,
		Content:      req.Content,
		Summary:      req.Summary,
		Contributors: contributors,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	eh.statsService.InvalidateDashboard(c.Request.Context())
	response.RespondCreated(c, gin.H{"entity": entity})
}

func (eh *EntityHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Name        *string        `json:"name"`
		Type        *string        `json:"type"`
		Description *string        `json:"description"`
		Priority    *string        `json:"priority"`
		DueDate     *time.Time     `json:"due_date"`
		ClearDue    bool           `json:"clear_due_date"`
		Tags        []string       `json:"tags"`
		Metadata    map[string]any `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	entity, err := eh.entityService.Update(c.Request.Context(), rd.ContributorID, id, services.EntityUpdate{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entity": entity})
}

func (eh *EntityHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := eh.entityService.Delete(c.Request.Context(), rd.ContributorID, id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	eh.statsService.InvalidateDashboard(c.Request.Context())
	response.RespondOK(c, gin.H{"ok": true})
}

func (eh *EntityHandler) ChangeState(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		StateID uuid.UUID `json:"state_id"`
		Comment string    `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	entity, err := eh.entityService.ChangeState(c.Request.Context(), rd.ContributorID, id, req.StateID, req.Comment)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	eh.statsService.InvalidateDashboard(c.Request.Context())
	response.RespondOK(c, gin.H{"entity": entity})
}

func (eh *EntityHandler) Assign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		ContributorID uuid.UUID `json:"contributor_id"`
		Role          string    `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	assignment, err := eh.entityService.AssignContributor(c.Request.Context(), rd.ContributorID, id, req.ContributorID, req.Role)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"assignment": assignment})
}

func (eh *EntityHandler) Unassign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	contributorID, err := uuid.Parse(c.Param("contributorId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_contributor_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := eh.entityService.UnassignContributor(c.Request.Context(), rd.ContributorID, id, contributorID); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (eh *EntityHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := eh.entityService.History(c.Request.Context(), id, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": entries})
}

func (eh *EntityHandler) Timeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	timeline, err := eh.entityService.Timeline(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"timeline": timeline.Entries, "steps": timeline.Steps})
}
