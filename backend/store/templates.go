package store

import (
	"context"

	"promptmarket/backend/models"

	"gorm.io/gorm"
)

// TemplateStore is the read side of the template catalog.
type TemplateStore interface {
	FindByID(ctx context.Context, id uint) (*models.Template, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListApprovedIDsByOwner(ctx context.Context, ownerID uint) ([]uint, error)
}

type templateStore struct {
	db *gorm.DB
}

func NewTemplateStore(db *gorm.DB) TemplateStore {
	return &templateStore{db: db}
}

func (s *templateStore) FindByID(ctx context.Context, id uint) (*models.Template, error) {
	var t models.Template
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err, "template")
	}
	return &t, nil
}

func (s *templateStore) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Template{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, translate(err, "template")
	}
	return count > 0, nil
}

func (s *templateStore) ListApprovedIDsByOwner(ctx context.Context, ownerID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).
		Model(&models.Template{}).
		Where("owner_id = ? AND status = ?", ownerID, models.TemplateApproved).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, translate(err, "templates")
	}
	return ids, nil
}
