package store

import (
	"context"
	"errors"
	"time"

	"promptmarket/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingStore interface {
	// Upsert writes the rater's bucket, keyed by (templateID, userID).
	Upsert(ctx context.Context, templateID, userID uint, r models.EffectivenessRange) (*models.Rating, error)
	// FindByTemplateAndUser returns nil, nil when the user has not rated.
	FindByTemplateAndUser(ctx context.Context, templateID, userID uint) (*models.Rating, error)
	ListByTemplate(ctx context.Context, templateID uint) ([]models.Rating, error)
	ListByTemplates(ctx context.Context, templateIDs []uint) ([]models.Rating, error)
}

type ratingStore struct {
	db *gorm.DB
}

func NewRatingStore(db *gorm.DB) RatingStore {
	return &ratingStore{db: db}
}

func (s *ratingStore) Upsert(ctx context.Context, templateID, userID uint, r models.EffectivenessRange) (*models.Rating, error) {
	now := time.Now().UTC()
	row := models.Rating{
		TemplateID:         templateID,
		UserID:             userID,
		EffectivenessRange: r,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "template_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"effectiveness_range", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return nil, translate(err, "rating")
	}

	// The returned ID is unreliable on the update branch; read back the row.
	stored, err := s.FindByTemplateAndUser(ctx, templateID, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, translate(gorm.ErrRecordNotFound, "rating")
	}
	return stored, nil
}

func (s *ratingStore) FindByTemplateAndUser(ctx context.Context, templateID, userID uint) (*models.Rating, error) {
	var r models.Rating
	err := s.db.WithContext(ctx).
		Where("template_id = ? AND user_id = ?", templateID, userID).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "rating")
	}
	return &r, nil
}

func (s *ratingStore) ListByTemplate(ctx context.Context, templateID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := s.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Find(&ratings).Error; err != nil {
		return nil, translate(err, "ratings")
	}
	return ratings, nil
}

func (s *ratingStore) ListByTemplates(ctx context.Context, templateIDs []uint) ([]models.Rating, error) {
	if len(templateIDs) == 0 {
		return []models.Rating{}, nil
	}
	var ratings []models.Rating
	if err := s.db.WithContext(ctx).
		Where("template_id IN ?", templateIDs).
		Find(&ratings).Error; err != nil {
		return nil, translate(err, "ratings")
	}
	return ratings, nil
}
