package store

import (
	"context"

	"promptmarket/backend/models"

	"gorm.io/gorm"
)

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByTemplate returns every comment of the template, newest first.
	ListByTemplate(ctx context.Context, templateID uint) ([]models.Comment, error)
	// DeleteCascade removes the comment and its whole reply subtree,
	// children before parents, and returns how many rows were removed.
	DeleteCascade(ctx context.Context, id uint) (int, error)
}

type commentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) CommentStore {
	return &commentStore{db: db}
}

func (s *commentStore) Create(ctx context.Context, c *models.Comment) error {
	return translate(s.db.WithContext(ctx).Create(c).Error, "comment")
}

func (s *commentStore) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "comment")
	}
	return &c, nil
}

func (s *commentStore) ListByTemplate(ctx context.Context, templateID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error; err != nil {
		return nil, translate(err, "comments")
	}
	return comments, nil
}

func (s *commentStore) DeleteCascade(ctx context.Context, id uint) (int, error) {
	deleted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		visited := make(map[uint]struct{})
		n, err := deleteSubtree(tx, id, visited)
		deleted = n
		return err
	})
	if err != nil {
		return 0, translate(err, "comment")
	}
	return deleted, nil
}

// deleteSubtree reads one level of children, recurses into each, then
// deletes the node itself. visited stops malformed parent cycles.
func deleteSubtree(tx *gorm.DB, id uint, visited map[uint]struct{}) (int, error) {
	if _, seen := visited[id]; seen {
		return 0, nil
	}
	visited[id] = struct{}{}

	var childIDs []uint
	if err := tx.Model(&models.Comment{}).
		Where("parent_id = ?", id).
		Pluck("id", &childIDs).Error; err != nil {
		return 0, err
	}

	deleted := 0
	for _, childID := range childIDs {
		n, err := deleteSubtree(tx, childID, visited)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}

	res := tx.Delete(&models.Comment{}, id)
	if res.Error != nil {
		return deleted, res.Error
	}
	return deleted + int(res.RowsAffected), nil
}
