package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/clients/ai"
	"github.com/tutordesk/tutordesk-backend/internal/repos"
	"github.com/tutordesk/tutordesk-backend/internal/types"
)

// historyLimit caps how many prior messages are replayed to the generator.
const historyLimit = 20

type ChatHandler struct {
	messages repos.MessageRepo
	threads  repos.ThreadRepo
	projects repos.ProjectRepo
	users    repos.UserRepo
	ai       ai.Client
}

func NewChatHandler(messages repos.MessageRepo, threads repos.ThreadRepo, projects repos.ProjectRepo, users repos.UserRepo, client ai.Client) *ChatHandler {
	return &ChatHandler{messages: messages, threads: threads, projects: projects, users: users, ai: client}
}

// POST /api/threads/:id/chat
//
// Stores the user's message first, then asks the generator for a reply. A
// failed generation never loses the user's message; the stored message comes
// back with a replyError instead of an assistant turn.
func (h *ChatHandler) SendChatTurn(c *gin.Context) {
	threadID := c.Param("id")
	var req struct {
		Content     string             `json:"content"`
		Tags        []string           `json:"tags"`
		Attachments []types.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	ctx := c.Request.Context()
	user := h.users.CurrentUser(ctx)
	userMsg, err := h.messages.CreateMessage(ctx, types.Message{
		UserID:      user.ID,
		ThreadID:    threadID,
		Role:        types.RoleUser,
		Content:     req.Content,
		Tags:        req.Tags,
		Attachments: req.Attachments,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	// Touch the thread so it sorts to the top of recent conversations.
	_, _ = h.threads.UpdateThread(ctx, threadID, map[string]any{})

	reply, genErr := h.ai.Generate(ctx, h.historyTurns(ctx, threadID), h.contextLabel(ctx, threadID))
	if genErr != nil {
		RespondOK(c, gin.H{"userMessage": userMsg, "replyError": genErr.Error()})
		return
	}

	assistantMsg, err := h.messages.CreateMessage(ctx, types.Message{
		UserID:   user.ID,
		ThreadID: threadID,
		Role:     types.RoleAssistant,
		Content:  reply,
		Meta:     &types.MessageMeta{Source: "ai"},
	})
	if err != nil {
		RespondOK(c, gin.H{"userMessage": userMsg, "replyError": err.Error()})
		return
	}
	RespondOK(c, gin.H{"userMessage": userMsg, "assistantMessage": assistantMsg})
}

// historyTurns replays the thread tail as generator input.
func (h *ChatHandler) historyTurns(ctx context.Context, threadID string) []ai.Turn {
	history := h.messages.GetByThreadID(ctx, threadID)
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// contextLabel names the subject the thread belongs to, when resolvable.
func (h *ChatHandler) contextLabel(ctx context.Context, threadID string) string {
	thread, ok := h.threads.GetByID(ctx, threadID)
	if !ok {
		return ""
	}
	project, ok := h.projects.GetByID(ctx, thread.ProjectID)
	if !ok {
		return ""
	}
	return project.Name
}
