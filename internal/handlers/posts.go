package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/store"
)

type PostHandler struct {
	content ContentService
	votes   VoteService
}

func NewPostHandler(content ContentService, votes VoteService) *PostHandler {
	return &PostHandler{content: content, votes: votes}
}

// Feed returns all posts, newest first
func (h *PostHandler) Feed(c *gin.Context) {
	feed, err := h.content.Feed(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve feed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "feed": feed})
}

// GetPost returns a single post with its comments
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := paramID(c, "Post")
	if !ok {
		return
	}

	post, err := h.content.GetPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err, "Failed to retrieve post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

// SubmitPost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) SubmitPost(c *gin.Context) {
	authorID, ok := requireUser(c)
	if !ok {
		return
	}

	var input models.CreatePostRequest
	if !bindJSON(c, &input, "Title and content are required") {
		return
	}

	_, err := h.content.AddPost(c.Request.Context(), store.NewPost{
		AuthorID: authorID,
		Title:    input.Title,
		Content:  input.Content,
		ImageURL: input.ImageURL,
	})
	if err != nil {
		respondError(c, err, "Failed to submit post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"msg":      "Post submitted",
		"feedback": feedbackSuccess,
	})
}

// PostVote returns the caller's vote on a post (+1, -1 or 0)
func (h *PostHandler) PostVote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "Post")
	if !ok {
		return
	}

	vote, err := h.content.UserVoteForPost(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve post vote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vote": vote})
}

// CommentVotes returns the caller's votes on the comments of a post
func (h *PostHandler) CommentVotes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "Post")
	if !ok {
		return
	}

	votes, err := h.content.UserCommentVotesForPost(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve comments votes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cvotedArray": votes})
}

func (h *PostHandler) UpvotePost(c *gin.Context) {
	h.vote(c, models.Upvote)
}

func (h *PostHandler) DownvotePost(c *gin.Context) {
	h.vote(c, models.Downvote)
}

func (h *PostHandler) vote(c *gin.Context, dir models.Direction) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "Post")
	if !ok {
		return
	}

	state, err := h.votes.Vote(c.Request.Context(), models.TargetPost, postID, userID, dir)
	if err != nil {
		respondError(c, err, "Failed to vote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vote": state})
}
