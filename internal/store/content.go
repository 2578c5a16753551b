package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/cache"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

type NewPost struct {
	AuthorID int
	Title    string
	Content  string
	ImageURL string
}

type NewComment struct {
	AuthorID int
	PostID   int
	Content  string
}

// ContentStore owns posts and comments.
type ContentStore struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewContentStore creates a ContentStore. c may be nil.
func NewContentStore(db *gorm.DB, c *cache.Cache) *ContentStore {
	return &ContentStore{db: db, cache: c}
}

func profileSelect(db *gorm.DB) *gorm.DB {
	return db.Select(models.ProfileColumns)
}

func (s *ContentStore) AddPost(ctx context.Context, in NewPost) (*models.Post, error) {
	post := models.Post{
		Title:    strings.TrimSpace(in.Title),
		Content:  strings.TrimSpace(in.Content),
		ImageURL: strings.TrimSpace(in.ImageURL),
		AuthorID: in.AuthorID,
	}
	if post.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if post.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.FeedKey)
	return &post, nil
}

// AddComment stores a comment on an existing post. Nothing is written when
// the post does not exist.
func (s *ContentStore) AddComment(ctx context.Context, in NewComment) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "short_post_id").Take(&post, in.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", in.PostID)
			}
			return err
		}

		comment = models.Comment{
			AuthorID:    in.AuthorID,
			PostID:      post.ID,
			ShortPostID: post.ShortPostID,
			Content:     content,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Preload("Author", profileSelect).Take(&comment, comment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.PostKey(in.PostID))
	return &comment, nil
}

// GetPost returns a post with its author and comments, oldest comment first.
func (s *ContentStore) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := s.cache.Aside(ctx, cache.PostKey(id), &post, func() error {
		return s.db.WithContext(ctx).
			Preload("Author", profileSelect).
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC, id ASC")
			}).
			Preload("Comments.Author", profileSelect).
			Take(&post, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Feed returns every post, newest first.
func (s *ContentStore) Feed(ctx context.Context) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := s.cache.Aside(ctx, cache.FeedKey, &posts, func() error {
		return s.db.WithContext(ctx).
			Preload("Author", profileSelect).
			Order("created_at DESC, id DESC").
			Find(&posts).Error
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *ContentStore) postExists(ctx context.Context, postID int) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

// UserVoteForPost returns the caller's vote on a post: +1, -1 or 0.
func (s *ContentStore) UserVoteForPost(ctx context.Context, postID, userID int) (int, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return 0, err
	}

	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, models.TargetPost, postID).
		Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return vote.Value, nil
}

// UserCommentVotesForPost returns the caller's votes on the comments of a post.
func (s *ContentStore) UserCommentVotesForPost(ctx context.Context, postID, userID int) ([]models.CommentVote, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	votes := make([]models.CommentVote, 0)
	err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("votes.target_id AS comment_id, votes.value AS vote").
		Joins("JOIN comments ON comments.id = votes.target_id").
		Where("votes.target_kind = ? AND votes.user_id = ? AND comments.post_id = ?", models.TargetComment, userID, postID).
		Order("votes.target_id").
		Scan(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}
