package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/middleware"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/observability"
	"github.com/emilythestrangee/forum/backend/internal/store"
)

// Feedback levels understood by the web client.
const (
	feedbackSuccess = 0
	feedbackDanger  = 3
)

type UserService interface {
	Register(ctx context.Context, in store.RegisterInput) (*models.User, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
}

type ContentService interface {
	AddPost(ctx context.Context, in store.NewPost) (*models.Post, error)
	AddComment(ctx context.Context, in store.NewComment) (*models.Comment, error)
	GetPost(ctx context.Context, id int) (*models.Post, error)
	Feed(ctx context.Context) ([]models.Post, error)
	UserVoteForPost(ctx context.Context, postID, userID int) (int, error)
	UserCommentVotesForPost(ctx context.Context, postID, userID int) ([]models.CommentVote, error)
}

type VoteService interface {
	Vote(ctx context.Context, kind models.TargetKind, targetID, userID int, dir models.Direction) (int, error)
}

type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	User    *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(users UserService, content ContentService, votes VoteService, tokens TokenIssuer) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(users, tokens),
		Post:    NewPostHandler(content, votes),
		Comment: NewCommentHandler(content, votes),
		User:    NewUserHandler(users),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := raw.(int)
	return id, ok
}

// requireUser writes a 401 and returns false when the request carries no user.
func requireUser(c *gin.Context) (int, bool) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "User not authenticated"})
	}
	return userID, ok
}

// paramID parses a positive integer path parameter. Anything else cannot
// name a stored row, so it is reported as not found.
func paramID(c *gin.Context, resource string) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(c, models.NewNotFoundError(resource, raw), "")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateField):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError converts err into the JSON failure envelope. Domain errors
// keep their message; anything else is logged and replaced by fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)

	msg := fallback
	var appErr *models.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		msg = appErr.Message
	} else {
		observability.Logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		_ = c.Error(err)
	}
	if msg == "" {
		msg = "Internal server error"
	}

	c.JSON(status, gin.H{"success": false, "msg": msg, "feedback": feedbackDanger})
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, dest any, msg string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": msg, "feedback": feedbackDanger})
		return false
	}
	return true
}
