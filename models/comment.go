package models

import "time"

// Comment is a discussion entry under a published review. Comments can never
// attach to a draft review. Admins may remove comments (soft delete).
type Comment struct {
	CommentID  uint       `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	ReviewID   uint       `gorm:"column:review_id" json:"review_id"`
	AuthorID   uint       `gorm:"column:author_id" json:"author_id"`
	AuthorRole int        `gorm:"column:author_role" json:"author_role"`
	Body       string     `gorm:"column:body" json:"body"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
