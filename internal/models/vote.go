package models

import "time"

// TargetKind names the table a vote points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Direction is the signed value of a single vote.
type Direction int

const (
	Upvote   Direction = 1
	Downvote Direction = -1
)

func (d Direction) String() string {
	if d == Upvote {
		return "up"
	}
	return "down"
}

// Vote model - at most one row per (user, target). Value is +1 or -1; a
// retracted vote is deleted rather than stored as zero.
type Vote struct {
	ID         int        `gorm:"primaryKey" json:"id"`
	UserID     int        `gorm:"not null;uniqueIndex:idx_votes_voter_target,priority:1" json:"userId"`
	TargetKind TargetKind `gorm:"size:16;not null;uniqueIndex:idx_votes_voter_target,priority:2" json:"targetKind"`
	TargetID   int        `gorm:"not null;uniqueIndex:idx_votes_voter_target,priority:3;index" json:"targetId"`
	Value      int        `gorm:"not null" json:"value"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CommentVote is one entry of the caller's votes on the comments of a post.
type CommentVote struct {
	CommentID int `json:"commentId"`
	Vote      int `json:"vote"`
}
