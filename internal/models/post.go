package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	ShortPostID string    `gorm:"uniqueIndex;size:16;not null" json:"shortPostId"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Content     string    `gorm:"not null" json:"content"`
	ImageURL    string    `json:"imageURL"`
	AuthorID    int       `gorm:"index;not null" json:"authorId"`
	Author      *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Votes       int       `gorm:"not null;default:0" json:"votes"`
	Comments    []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ShortPostID == "" {
		p.ShortPostID = NewShortID()
	}
	return nil
}

type CreatePostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"imageURL"`
}
