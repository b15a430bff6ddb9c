package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/attachments"
)

// maxUploadBytes bounds a single attachment body (16 MiB).
const maxUploadBytes = 16 << 20

type AttachmentHandler struct {
	svc *attachments.Service
}

func NewAttachmentHandler(svc *attachments.Service) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// POST /api/attachments (multipart: file, scope)
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	if len(data) > maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", errors.New("attachment exceeds upload limit"))
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), c.PostForm("scope"), fileHeader.Filename, data)
	if err != nil {
		status, code := uploadErrorStatus(err)
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, gin.H{"attachment": result})
}

// GET /api/attachments/url?path=
func (h *AttachmentHandler) SignedURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		RespondError(c, http.StatusBadRequest, "missing_path", errors.New("path query parameter is required"))
		return
	}
	url, err := h.svc.SignedURL(c.Request.Context(), path)
	if err != nil {
		status, code := uploadErrorStatus(err)
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// DELETE /api/attachments?path=
func (h *AttachmentHandler) Remove(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		RespondError(c, http.StatusBadRequest, "missing_path", errors.New("path query parameter is required"))
		return
	}
	if err := h.svc.Remove(c.Request.Context(), path); err != nil {
		status, code := uploadErrorStatus(err)
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func uploadErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, attachments.ErrNoStore):
		return http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, attachments.ErrNoOwner):
		return http.StatusUnauthorized, "no_owner"
	default:
		return http.StatusInternalServerError, "storage_failed"
	}
}
