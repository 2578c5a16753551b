package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/store"
)

type AuthHandler struct {
	users  UserService
	tokens TokenIssuer
}

func NewAuthHandler(users UserService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if !bindJSON(c, &input, "Name, a valid email, username and password are required") {
		return
	}

	_, err := h.users.Register(c.Request.Context(), store.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"msg":      "You are now registered and can log in",
		"feedback": feedbackSuccess,
	})
}

// UsernameAvailable reports success=true when nobody holds the username.
func (h *AuthHandler) UsernameAvailable(c *gin.Context) {
	var input models.UsernameRequest
	if !bindJSON(c, &input, "Username is required") {
		return
	}

	available, err := h.users.UsernameAvailable(c.Request.Context(), input.Username)
	if err != nil {
		respondError(c, err, "Failed to check username availability")
		return
	}
	msg := "Username available"
	if !available {
		msg = "Username unavailable"
	}
	c.JSON(http.StatusOK, gin.H{"success": available, "msg": msg})
}

// EmailAvailable reports success=true when nobody holds the email.
func (h *AuthHandler) EmailAvailable(c *gin.Context) {
	var input models.EmailRequest
	if !bindJSON(c, &input, "Email is required") {
		return
	}

	available, err := h.users.EmailAvailable(c.Request.Context(), input.Email)
	if err != nil {
		respondError(c, err, "Failed to check email availability")
		return
	}
	msg := "Email available"
	if !available {
		msg = "Email unavailable"
	}
	c.JSON(http.StatusOK, gin.H{"success": available, "msg": msg})
}

// Authenticate checks credentials and returns a token.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var input models.LoginRequest
	if !bindJSON(c, &input, "Username and password are required") {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err, "Failed to authenticate")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"msg":      "Welcome back <b>" + user.Name + "</b>!",
		"feedback": feedbackSuccess,
		"token":    "JWT " + token,
		"user": models.AuthUser{
			ShortUserID: user.ShortUserID,
			Name:        user.Name,
			Username:    user.Username,
			Email:       user.Email,
		},
	})
}

// Profile returns the authenticated user's own profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}
