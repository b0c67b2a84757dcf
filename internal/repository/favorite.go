package repository

import (
	"errors"
	"tsubame/internal/apperror"
	"tsubame/internal/models"

	"gorm.io/gorm"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle flips favorite existence for the (user, post) pair and reports
// whether a favorite was added. Two concurrent toggles can both observe
// "not present" and race on the insert; the unique index rejects one, and
// that loser is retried as a toggle off rather than surfaced as an error.
func (r *FavoriteRepository) Toggle(postID, userID uint) (bool, error) {
	added, err := r.toggleOnce(postID, userID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = r.db.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&models.Favorite{}).Error
		return false, err
	}
	return added, err
}

func (r *FavoriteRepository) toggleOnce(postID, userID uint) (bool, error) {
	var added bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("post", postID)
			}
			return err
		}

		var existing models.Favorite
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		if err == nil {
			added = false
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		added = true
		return tx.Create(&models.Favorite{UserID: userID, PostID: postID}).Error
	})
	return added, err
}

// IsFavorite reports whether the user favorited the post. Anonymous
// viewers (nil userID) never have favorites, so no query is issued.
func (r *FavoriteRepository) IsFavorite(postID uint, userID *uint) (bool, error) {
	if userID == nil {
		return false, nil
	}
	var favorite models.Favorite
	err := r.db.Where("user_id = ? AND post_id = ?", *userID, postID).First(&favorite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *FavoriteRepository) CountFavorites(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// EnrichWithFavoriteData fills IsFavorite and FavoriteCount for every post
// in the list: one membership query for the viewer (skipped entirely for
// anonymous viewers) and one grouped count, regardless of list size.
func (r *FavoriteRepository) EnrichWithFavoriteData(posts []models.Post, userID *uint) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	favorited := make(map[uint]bool)
	if userID != nil {
		var ids []uint
		err := r.db.Model(&models.Favorite{}).
			Where("user_id = ? AND post_id IN ?", *userID, postIDs).
			Pluck("post_id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			favorited[id] = true
		}
	}

	type countRow struct {
		PostID uint
		Count  int
	}
	var rows []countRow
	err := r.db.Model(&models.Favorite{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}

	for i := range posts {
		posts[i].IsFavorite = favorited[posts[i].ID]
		posts[i].FavoriteCount = counts[posts[i].ID]
	}
	return posts, nil
}

// FindByUser returns the user's favorites newest first, each with its post.
func (r *FavoriteRepository) FindByUser(userID uint, offset, limit int) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.Preload("Post").Preload("Post.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *FavoriteRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
