package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/repos"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type HomeworkHandler struct {
	homework repos.HomeworkRepo
	users    repos.UserRepo
}

func NewHomeworkHandler(homework repos.HomeworkRepo, users repos.UserRepo) *HomeworkHandler {
	return &HomeworkHandler{homework: homework, users: users}
}

// GET /api/homework?status=
func (h *HomeworkHandler) ListHomework(c *gin.Context) {
	ctx := c.Request.Context()
	user := h.users.CurrentUser(ctx)
	if status := c.Query("status"); status != "" {
		RespondOK(c, gin.H{"homework": h.homework.GetByStatus(ctx, user.ID, status)})
		return
	}
	RespondOK(c, gin.H{"homework": h.homework.GetByUserID(ctx, user.ID)})
}

// POST /api/homework
func (h *HomeworkHandler) CreateHomework(c *gin.Context) {
	var req struct {
		ProjectID   string             `json:"projectId"`
		Title       string             `json:"title"`
		Detail      string             `json:"detail"`
		AssignedAt  string             `json:"assignedAt"`
		DueAt       string             `json:"dueAt"`
		Status      string             `json:"status"`
		Attachments []types.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user := h.users.CurrentUser(c.Request.Context())
	hw, err := h.homework.CreateHomework(c.Request.Context(), types.Homework{
		UserID:      user.ID,
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Detail:      req.Detail,
		AssignedAt:  req.AssignedAt,
		DueAt:       req.DueAt,
		Status:      req.Status,
		Attachments: req.Attachments,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"homework": hw})
}

// PATCH /api/homework/:id
func (h *HomeworkHandler) UpdateHomework(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	hw, err := h.homework.UpdateHomework(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "update_failed", err)
		return
	}
	if hw == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "homework not found"})
		return
	}
	RespondOK(c, gin.H{"homework": hw})
}

// POST /api/homework/:id/toggle
func (h *HomeworkHandler) ToggleStatus(c *gin.Context) {
	hw, err := h.homework.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "toggle_failed", err)
		return
	}
	if hw == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "homework not found"})
		return
	}
	RespondOK(c, gin.H{"homework": hw})
}

// DELETE /api/homework/:id
func (h *HomeworkHandler) DeleteHomework(c *gin.Context) {
	existed, err := h.homework.DeleteHomework(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": existed})
}
