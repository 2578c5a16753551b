package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/forum/backend/internal/middleware"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/store"
)

type fakeUsers struct {
	UserService
	authErr error
}

func (f *fakeUsers) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	return nil, f.authErr
}

type fakeContent struct {
	ContentService
	feedErr error
}

func (f *fakeContent) Feed(ctx context.Context) ([]models.Post, error) {
	return nil, f.feedErr
}

type fakeVotes struct {
	gotKind models.TargetKind
	gotID   int
	gotUser int
	gotDir  models.Direction
}

func (f *fakeVotes) Vote(ctx context.Context, kind models.TargetKind, targetID, userID int, dir models.Direction) (int, error) {
	f.gotKind, f.gotID, f.gotUser, f.gotDir = kind, targetID, userID, dir
	return int(dir), nil
}

func serve(t *testing.T, method, path, body string, register func(r *gin.Engine)) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func asUser(id int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func TestAuthenticate_StoreFailureIsInternal(t *testing.T) {
	h := NewAuthHandler(&fakeUsers{authErr: errors.New("dial tcp: connection refused")}, nil)

	status, body := serve(t, http.MethodPost, "/user/authenticate", `{"username":"a","password":"b"}`, func(r *gin.Engine) {
		r.POST("/user/authenticate", h.Authenticate)
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to authenticate", body["msg"])
	assert.NotContains(t, body["msg"], "connection refused")
}

func TestFeed_StoreFailure(t *testing.T) {
	h := NewPostHandler(&fakeContent{feedErr: errors.New("boom")}, nil)

	status, body := serve(t, http.MethodGet, "/feed", "", func(r *gin.Engine) {
		r.GET("/feed", h.Feed)
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to retrieve feed", body["msg"])
}

func TestVoteHandlers_PassDirectionAndTarget(t *testing.T) {
	votes := &fakeVotes{}
	posts := NewPostHandler(nil, votes)
	comments := NewCommentHandler(nil, votes)

	tests := []struct {
		path     string
		handler  gin.HandlerFunc
		wantKind models.TargetKind
		wantDir  models.Direction
		key      string
	}{
		{"/post/5/upvote", posts.UpvotePost, models.TargetPost, models.Upvote, "vote"},
		{"/post/5/downvote", posts.DownvotePost, models.TargetPost, models.Downvote, "vote"},
		{"/comment/5/upvote", comments.UpvoteComment, models.TargetComment, models.Upvote, "voted"},
		{"/comment/5/downvote", comments.DownvoteComment, models.TargetComment, models.Downvote, "voted"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := serve(t, http.MethodPut, tt.path, "", func(r *gin.Engine) {
				route := strings.Replace(tt.path, "5", ":id", 1)
				r.PUT(route, asUser(9), tt.handler)
			})
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, float64(tt.wantDir), body[tt.key])
			assert.Equal(t, tt.wantKind, votes.gotKind)
			assert.Equal(t, 5, votes.gotID)
			assert.Equal(t, 9, votes.gotUser)
		})
	}
}

func TestVoteHandlers_RequireUser(t *testing.T) {
	h := NewPostHandler(nil, &fakeVotes{})

	status, body := serve(t, http.MethodPut, "/post/1/upvote", "", func(r *gin.Engine) {
		r.PUT("/post/:id/upvote", h.UpvotePost)
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewDuplicateFieldError("username"), http.StatusConflict},
		{models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{models.ErrBadCredentials, http.StatusUnauthorized},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

var _ UserService = (*store.UserStore)(nil)
var _ ContentService = (*store.ContentStore)(nil)
var _ VoteService = (*store.VoteLedger)(nil)
