package store

import (
	"context"

	"promptmarket/backend/models"

	"gorm.io/gorm"
)

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	// SetVerifiedExpert flips the flag only if it is currently false and
	// reports whether this call performed the flip.
	SetVerifiedExpert(ctx context.Context, id uint) (bool, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type userStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

func (s *userStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (s *userStore) SetVerifiedExpert(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_verified_expert = ?", id, false).
		Update("is_verified_expert", true)
	if res.Error != nil {
		return false, translate(res.Error, "user")
	}
	return res.RowsAffected == 1, nil
}

func (s *userStore) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("role = ?", role).
		Order("id").
		Find(&users).Error; err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}
