package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/repos"
)

type ThreadHandler struct {
	threads repos.ThreadRepo
	users   repos.UserRepo
}

func NewThreadHandler(threads repos.ThreadRepo, users repos.UserRepo) *ThreadHandler {
	return &ThreadHandler{threads: threads, users: users}
}

// GET /api/projects/:id/threads
func (h *ThreadHandler) ListThreadsForProject(c *gin.Context) {
	user := h.users.CurrentUser(c.Request.Context())
	threads := h.threads.GetByUserIDAndProjectID(c.Request.Context(), user.ID, c.Param("id"))
	RespondOK(c, gin.H{"threads": threads})
}

// POST /api/threads
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req struct {
		ProjectID string `json:"projectId"`
		Title     string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user := h.users.CurrentUser(c.Request.Context())
	thread, err := h.threads.CreateThread(c.Request.Context(), user.ID, req.ProjectID, req.Title)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"thread": thread})
}

// PATCH /api/threads/:id
func (h *ThreadHandler) UpdateThread(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	thread, err := h.threads.UpdateThread(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "update_failed", err)
		return
	}
	if thread == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
		return
	}
	RespondOK(c, gin.H{"thread": thread})
}

// DELETE /api/threads/:id
func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	existed, err := h.threads.DeleteThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": existed})
}
