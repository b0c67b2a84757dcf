package models

import (
	"time"
)

// Favorite marks a post as favorited by a user, unique per (user, post) pair.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_user_post" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	CreatedAt time.Time `json:"created_at"`
}
