package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/repos"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

type MessageHandler struct {
	messages repos.MessageRepo
	users    repos.UserRepo
}

func NewMessageHandler(messages repos.MessageRepo, users repos.UserRepo) *MessageHandler {
	return &MessageHandler{messages: messages, users: users}
}

// GET /api/threads/:id/messages
func (h *MessageHandler) ListMessagesForThread(c *gin.Context) {
	messages := h.messages.GetByThreadID(c.Request.Context(), c.Param("id"))
	RespondOK(c, gin.H{"messages": messages})
}

// POST /api/messages
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req struct {
		ThreadID    string             `json:"threadId"`
		Role        string             `json:"role"`
		Content     string             `json:"content"`
		Tags        []string           `json:"tags"`
		Attachments []types.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	user := h.users.CurrentUser(c.Request.Context())
	msg, err := h.messages.CreateMessage(c.Request.Context(), types.Message{
		UserID:      user.ID,
		ThreadID:    req.ThreadID,
		Role:        req.Role,
		Content:     req.Content,
		Tags:        req.Tags,
		Attachments: req.Attachments,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

// DELETE /api/messages/:id
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	existed, err := h.messages.DeleteMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": existed})
}

// GET /api/messages/search?q=
func (h *MessageHandler) SearchMessages(c *gin.Context) {
	user := h.users.CurrentUser(c.Request.Context())
	results := h.messages.SearchByContent(c.Request.Context(), user.ID, c.Query("q"))
	RespondOK(c, gin.H{"messages": results})
}
