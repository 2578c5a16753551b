package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/store"
)

type CommentHandler struct {
	content ContentService
	votes   VoteService
}

func NewCommentHandler(content ContentService, votes VoteService) *CommentHandler {
	return &CommentHandler{content: content, votes: votes}
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	authorID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "Post")
	if !ok {
		return
	}

	var input models.CreateCommentRequest
	if !bindJSON(c, &input, "Comment content is required") {
		return
	}

	comment, err := h.content.AddComment(c.Request.Context(), store.NewComment{
		AuthorID: authorID,
		PostID:   postID,
		Content:  input.Content,
	})
	if err != nil {
		respondError(c, err, "Failed to comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"msg":        "Commented",
		"feedback":   feedbackSuccess,
		"newComment": comment,
	})
}

// UpvoteComment casts or retracts an upvote on a comment
func (h *CommentHandler) UpvoteComment(c *gin.Context) {
	h.vote(c, models.Upvote, "Upvoted")
}

// DownvoteComment casts or retracts a downvote on a comment
func (h *CommentHandler) DownvoteComment(c *gin.Context) {
	h.vote(c, models.Downvote, "Downvoted")
}

func (h *CommentHandler) vote(c *gin.Context, dir models.Direction, msg string) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "Comment")
	if !ok {
		return
	}

	state, err := h.votes.Vote(c.Request.Context(), models.TargetComment, commentID, userID, dir)
	if err != nil {
		respondError(c, err, "Failed to vote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": msg, "voted": state})
}
