package store

import (
	"context"

	"promptmarket/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UpvoteStore interface {
	// Toggle removes the (templateID, userID) upvote if present, otherwise
	// inserts it, and returns the resulting presence.
	Toggle(ctx context.Context, templateID, userID uint) (bool, error)
	Exists(ctx context.Context, templateID, userID uint) (bool, error)
	Count(ctx context.Context, templateID uint) (int64, error)
}

type upvoteStore struct {
	db *gorm.DB
}

func NewUpvoteStore(db *gorm.DB) UpvoteStore {
	return &upvoteStore{db: db}
}

func (s *upvoteStore) Toggle(ctx context.Context, templateID, userID uint) (bool, error) {
	var hasUpvoted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("template_id = ? AND user_id = ?", templateID, userID).
			Delete(&models.Upvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			hasUpvoted = false
			return nil
		}

		// A concurrent toggle may have inserted first; either way the row exists.
		up := models.Upvote{TemplateID: templateID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&up).Error; err != nil {
			return err
		}
		hasUpvoted = true
		return nil
	})
	if err != nil {
		return false, translate(err, "upvote")
	}
	return hasUpvoted, nil
}

func (s *upvoteStore) Exists(ctx context.Context, templateID, userID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Upvote{}).
		Where("template_id = ? AND user_id = ?", templateID, userID).
		Count(&count).Error; err != nil {
		return false, translate(err, "upvote")
	}
	return count > 0, nil
}

func (s *upvoteStore) Count(ctx context.Context, templateID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Upvote{}).
		Where("template_id = ?", templateID).
		Count(&count).Error; err != nil {
		return 0, translate(err, "upvotes")
	}
	return count, nil
}
