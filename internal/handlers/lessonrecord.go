package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/repos"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type LessonRecordHandler struct {
	lessons repos.LessonRecordRepo
	users   repos.UserRepo
}

func NewLessonRecordHandler(lessons repos.LessonRecordRepo, users repos.UserRepo) *LessonRecordHandler {
	return &LessonRecordHandler{lessons: lessons, users: users}
}

// GET /api/lessons?date=
func (h *LessonRecordHandler) ListLessonRecords(c *gin.Context) {
	ctx := c.Request.Context()
	user := h.users.CurrentUser(ctx)
	if date := c.Query("date"); date != "" {
		rec, ok := h.lessons.GetByDate(ctx, user.ID, date)
		if !ok {
			RespondOK(c, gin.H{"lessonRecords": []types.LessonRecord{}})
			return
		}
		RespondOK(c, gin.H{"lessonRecords": []types.LessonRecord{*rec}})
		return
	}
	RespondOK(c, gin.H{"lessonRecords": h.lessons.GetByUserID(ctx, user.ID)})
}

// POST /api/lessons
func (h *LessonRecordHandler) CreateLessonRecord(c *gin.Context) {
	var req struct {
		Date      string `json:"date"`
		Duration  int    `json:"duration"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Content   string `json:"content"`
		Memo      string `json:"memo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user := h.users.CurrentUser(c.Request.Context())
	rec, err := h.lessons.CreateLessonRecord(c.Request.Context(), types.LessonRecord{
		UserID:    user.ID,
		Date:      req.Date,
		Duration:  req.Duration,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Content:   req.Content,
		Memo:      req.Memo,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"lessonRecord": rec})
}

// PATCH /api/lessons/:id
func (h *LessonRecordHandler) UpdateLessonRecord(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rec, err := h.lessons.UpdateLessonRecord(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "update_failed", err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson record not found"})
		return
	}
	RespondOK(c, gin.H{"lessonRecord": rec})
}

// DELETE /api/lessons/:id
func (h *LessonRecordHandler) DeleteLessonRecord(c *gin.Context) {
	existed, err := h.lessons.DeleteLessonRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": existed})
}

// GET /api/lessons/report/:month
func (h *LessonRecordHandler) MonthlyReport(c *gin.Context) {
	user := h.users.CurrentUser(c.Request.Context())
	report := h.lessons.MonthlyReport(c.Request.Context(), user.ID, c.Param("month"))
	RespondOK(c, gin.H{"report": report})
}
