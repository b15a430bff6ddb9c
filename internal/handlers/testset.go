package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/repos"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type TestSetHandler struct {
	testSets repos.TestSetRepo
	users    repos.UserRepo
}

func NewTestSetHandler(testSets repos.TestSetRepo, users repos.UserRepo) *TestSetHandler {
	return &TestSetHandler{testSets: testSets, users: users}
}

// GET /api/testsets
func (h *TestSetHandler) ListTestSets(c *gin.Context) {
	user := h.users.CurrentUser(c.Request.Context())
	sets := h.testSets.GetByUserID(c.Request.Context(), user.ID)
	RespondOK(c, gin.H{"testSets": sets})
}

// GET /api/testsets/:id
func (h *TestSetHandler) GetTestSet(c *gin.Context) {
	set, ok := h.testSets.GetByID(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "test set not found"})
		return
	}
	RespondOK(c, gin.H{"testSet": set})
}

// POST /api/testsets
func (h *TestSetHandler) CreateTestSet(c *gin.Context) {
	var req struct {
		Date   string            `json:"date"`
		Name   string            `json:"name"`
		Grade  string            `json:"grade"`
		Memo   string            `json:"memo"`
		Scores []types.TestScore `json:"scores"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user := h.users.CurrentUser(c.Request.Context())
	set, err := h.testSets.CreateTestSet(c.Request.Context(), types.TestSet{
		UserID: user.ID,
		Date:   req.Date,
		Name:   req.Name,
		Grade:  req.Grade,
		Memo:   req.Memo,
	}, req.Scores)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"testSet": set})
}

// PUT /api/testsets/:id
func (h *TestSetHandler) UpdateTestSet(c *gin.Context) {
	var req struct {
		Patch  map[string]any    `json:"patch"`
		Scores []types.TestScore `json:"scores"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	set, err := h.testSets.UpdateTestSet(c.Request.Context(), c.Param("id"), req.Patch, req.Scores)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "update_failed", err)
		return
	}
	if set == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test set not found"})
		return
	}
	RespondOK(c, gin.H{"testSet": set})
}

// DELETE /api/testsets/:id
func (h *TestSetHandler) DeleteTestSet(c *gin.Context) {
	existed, err := h.testSets.DeleteTestSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": existed})
}
