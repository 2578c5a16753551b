package models

import "time"

type Comment struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	AuthorID    int       `gorm:"index;not null" json:"authorId"`
	Author      *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID      int       `gorm:"index;not null" json:"postId"`
	ShortPostID string    `gorm:"size:16;not null" json:"shortPostId"`
	Content     string    `gorm:"not null" json:"content"`
	Votes       int       `gorm:"not null;default:0" json:"votes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}
