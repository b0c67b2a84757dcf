package models

import (
	"time"
)

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	// ParentID is nil for top-level posts. Replies are one level deep:
	// a reply's parent is always top-level.
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	Replies   []Post    `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Not database columns. IsFavorite and FavoriteCount are filled per
	// viewer by FavoriteRepository.EnrichWithFavoriteData, ReplyCount by
	// PostRepository.FillReplyCounts.
	IsFavorite    bool `gorm:"-" json:"is_favorite"`
	FavoriteCount int  `gorm:"-" json:"favorite_count"`
	ReplyCount    int  `gorm:"-" json:"reply_count"`
}

// IsReply reports whether the post is a reply to another post.
func (p *Post) IsReply() bool {
	return p.ParentID != nil
}
