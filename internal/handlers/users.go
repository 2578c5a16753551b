package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile returns a user's public profile by username
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}
