package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/repos"
)

type UserHandler struct {
	users repos.UserRepo
}

func NewUserHandler(users repos.UserRepo) *UserHandler {
	return &UserHandler{users: users}
}

// GET /api/user
func (h *UserHandler) GetMe(c *gin.Context) {
	user := h.users.CurrentUser(c.Request.Context())
	RespondOK(c, gin.H{"user": user})
}
