package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docuflow/lifecycle-backend/internal/http/response"
	"github.com/docuflow/lifecycle-backend/internal/pkg/ctxutil"
	"github.com/docuflow/lifecycle-backend/internal/services"
)

type FileHandler struct {
	fileService services.FileService
}

func NewFileHandler(fileService services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (fh *FileHandler) Upload(c *gin.Context) {
	versionID, err := uuid.Parse(c.Param("versionId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_version_id", err)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	src, err := header.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer src.Close()

	rd := ctxutil.GetRequestData(c.Request.Context())
	file, err := fh.fileService.Upload(c.Request.Context(), rd.ContributorID, versionID, services.FileUpload{
		OriginalName: header.Filename,
		Mimetype:     header.Header.Get("Content-Type"),
		Content:      src,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"file": file})
}

func (fh *FileHandler) ListByVersion(c *gin.Context) {
	versionID, err := uuid.Parse(c.Param("versionId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_version_id", err)
		return
	}
	files, err := fh.fileService.ListByVersion(c.Request.Context(), versionID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"files": files})
}

func (fh *FileHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	file, reader, err := fh.fileService.Open(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	contentType := file.Mimetype
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", fmt.Sprintf("%d", file.Size))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (fh *FileHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := fh.fileService.Delete(c.Request.Context(), rd.ContributorID, id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
