package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/repos"
)

type ProjectHandler struct {
	projects repos.ProjectRepo
	users    repos.UserRepo
}

func NewProjectHandler(projects repos.ProjectRepo, users repos.UserRepo) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users}
}

// GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user := h.users.CurrentUser(c.Request.Context())
	projects := h.projects.GetByUserID(c.Request.Context(), user.ID)
	RespondOK(c, gin.H{"projects": projects})
}

// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		RespondError(c, http.StatusBadRequest, "missing_name", errors.New("project name is required"))
		return
	}
	user := h.users.CurrentUser(c.Request.Context())
	project, err := h.projects.CreateProject(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"project": project})
}
