package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/forum/backend/internal/cache"
	"github.com/emilythestrangee/forum/backend/internal/models"
	"github.com/emilythestrangee/forum/backend/internal/observability"
)

// VoteLedger records votes and keeps the target's aggregate equal to the
// sum of its vote rows.
type VoteLedger struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewVoteLedger creates a VoteLedger. c may be nil.
func NewVoteLedger(db *gorm.DB, c *cache.Cache) *VoteLedger {
	return &VoteLedger{db: db, cache: c}
}

// NextVoteState returns the voter's state after casting dir on top of prior
// (+1, -1 or 0), and the change to apply to the target's aggregate.
// Repeating the current direction retracts the vote.
func NextVoteState(prior int, dir models.Direction) (next, delta int) {
	d := int(dir)
	if prior == d {
		return 0, -prior
	}
	return d, d - prior
}

// Vote casts dir on a post or comment for userID and returns the voter's new
// state.
func (l *VoteLedger) Vote(ctx context.Context, kind models.TargetKind, targetID, userID int, dir models.Direction) (int, error) {
	if dir != models.Upvote && dir != models.Downvote {
		return 0, models.NewValidationError("Vote direction must be up or down")
	}
	model, err := targetModel(kind)
	if err != nil {
		return 0, err
	}

	var next, postID int
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := lockTarget(tx, kind, targetID)
		if err != nil {
			return err
		}
		postID = id

		var prior models.Vote
		err = tx.Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
			Take(&prior).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var delta int
		next, delta = NextVoteState(prior.Value, dir)

		switch {
		case prior.ID == 0:
			vote := models.Vote{UserID: userID, TargetKind: kind, TargetID: targetID, Value: next}
			err = tx.Create(&vote).Error
		case next == 0:
			err = tx.Delete(&prior).Error
		default:
			err = tx.Model(&prior).Update("value", next).Error
		}
		if err != nil {
			return err
		}

		return tx.Model(model).
			Where("id = ?", targetID).
			UpdateColumn("votes", gorm.Expr("votes + ?", delta)).Error
	})
	if err != nil {
		return 0, err
	}

	observability.VotesTotal.WithLabelValues(string(kind), dir.String()).Inc()
	l.cache.Invalidate(ctx, cache.PostKey(postID), cache.FeedKey)
	return next, nil
}

func targetModel(kind models.TargetKind) (any, error) {
	switch kind {
	case models.TargetPost:
		return &models.Post{}, nil
	case models.TargetComment:
		return &models.Comment{}, nil
	default:
		return nil, models.NewValidationError("Unknown vote target")
	}
}

type lockedTarget struct {
	ID     int
	PostID int
}

// lockTarget takes a row lock on the target for the rest of the transaction
// and returns the id of the post it belongs to.
func lockTarget(tx *gorm.DB, kind models.TargetKind, targetID int) (int, error) {
	var row lockedTarget

	q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", targetID).Limit(1)
	var (
		res      *gorm.DB
		resource string
	)
	switch kind {
	case models.TargetPost:
		resource = "Post"
		res = q.Model(&models.Post{}).Select("id", "id AS post_id").Find(&row)
	case models.TargetComment:
		resource = "Comment"
		res = q.Model(&models.Comment{}).Select("id", "post_id").Find(&row)
	default:
		return 0, models.NewValidationError("Unknown vote target")
	}
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, models.NewNotFoundError(resource, targetID)
	}
	return row.PostID, nil
}
