package repository

import (
	"errors"
	"strings"
	"tsubame/internal/apperror"
	"tsubame/internal/models"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	MaxTitleLen   = 200
	MaxContentLen = 1000
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func validatePostFields(title, content string) error {
	if title == "" || content == "" {
		return apperror.Validation("", "title and content are required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return apperror.Validation("title", "title must be 200 characters or fewer")
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return apperror.Validation("content", "content must be 1000 characters or fewer")
	}
	return nil
}

// Create inserts a new top-level post.
func (r *PostRepository) Create(title, content string, authorID uint) (*models.Post, error) {
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}
	post := models.Post{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
	}
	if err := r.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// CreateReply inserts a reply to a top-level post. Replies to replies
// are rejected, keeping the tree one level deep.
func (r *PostRepository) CreateReply(title, content string, authorID, parentID uint) (*models.Post, error) {
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}

	var parent models.Post
	if err := r.db.First(&parent, parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post", parentID)
		}
		return nil, err
	}
	if parent.ParentID != nil {
		return nil, apperror.Validation("parent_id", "replies to replies are not allowed")
	}

	post := models.Post{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
		ParentID: &parentID,
	}
	if err := r.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) FindByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, err
	}
	return &post, nil
}

// FindWithRepliesAndAuthor loads a post with its author and its replies
// oldest-first, each reply carrying its own author.
func (r *PostRepository) FindWithRepliesAndAuthor(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, err
	}
	return &post, nil
}

// Update edits a post's title and content. Author only.
func (r *PostRepository) Update(id uint, title, content string, userID uint) (*models.Post, error) {
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}
	post, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperror.Forbidden("you are not allowed to edit this post")
	}

	updates := map[string]interface{}{"title": title, "content": content}
	if err := r.db.Model(post).Updates(updates).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post and everything hanging off it: favorites on its
// replies, its own favorites, the replies, then the post itself. The whole
// cascade runs in one transaction so a failure never leaves a partial state.
func (r *PostRepository) Delete(id, userID uint) error {
	post, err := r.FindByID(id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return apperror.Forbidden("you are not allowed to delete this post")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		replyIDs := tx.Model(&models.Post{}).Select("id").Where("parent_id = ?", id)
		if err := tx.Where("post_id IN (?)", replyIDs).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// FindInfiniteScroll returns up to limit top-level posts by id descending.
// When cursor is given only posts with a strictly smaller id are returned,
// so pages stay stable under concurrent inserts.
func (r *PostRepository) FindInfiniteScroll(limit int, cursor *uint) ([]models.Post, error) {
	q := r.db.Preload("Author").
		Where("parent_id IS NULL").
		Order("id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("id < ?", *cursor)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FillReplyCounts sets ReplyCount on each post with a single grouped
// count query.
func (r *PostRepository) FillReplyCounts(posts []models.Post) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var rows []struct {
		ParentID uint
		Count    int
	}
	err := r.db.Model(&models.Post{}).
		Select("parent_id, COUNT(*) as count").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ParentID] = row.Count
	}
	for i := range posts {
		posts[i].ReplyCount = counts[posts[i].ID]
	}
	return posts, nil
}

// FindByAuthor returns the author's top-level posts, newest first.
func (r *PostRepository) FindByAuthor(authorID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("Author").
		Where("author_id = ? AND parent_id IS NULL", authorID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) CountByAuthor(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).
		Where("author_id = ? AND parent_id IS NULL", authorID).
		Count(&count).Error
	return count, err
}

// Search matches a case-insensitive substring over title or content,
// newest first. Replies are included, as on the search page.
func (r *PostRepository) Search(query string, offset, limit int) ([]models.Post, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var posts []models.Post
	err := r.db.Preload("Author").
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) CountSearch(query string) (int64, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var count int64
	err := r.db.Model(&models.Post{}).
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern).
		Count(&count).Error
	return count, err
}
