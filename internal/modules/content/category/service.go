package category

import (
	"errors"
	"strings"

	"github.com/bloppost/core/internal/database"
	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/apperr"
	"gorm.io/gorm"
)

type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required"`
}

type UpdateCategoryDTO struct {
	Name *string `json:"name"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List() ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	return cats, s.db.Order("created_at ASC").Find(&cats).Error
}

func (s *Service) GetByID(id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.db.Preload("Tags").First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Create(dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, apperr.Validation("name cannot be empty")
	}

	var count int64
	if err := s.db.Model(&models.CategoryModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Duplicate("category name already exists")
	}

	cat := models.CategoryModel{Name: name}
	if err := s.db.Create(&cat).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperr.Duplicate("category name already exists")
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Update(id string, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	cat, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		var count int64
		if err := s.db.Model(&models.CategoryModel{}).
			Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.Duplicate("category name already exists")
		}
		updates["name"] = name
	}

	if err := s.db.Model(cat).Updates(updates).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperr.Duplicate("category name already exists")
		}
		return nil, err
	}
	return cat, nil
}

// Delete removes the category together with everything it owns in one
// transaction: its posts (plus those posts' comments and tag links) and its
// tags (detached from any remaining posts).
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cat models.CategoryModel
		if err := tx.First(&cat, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("category not found")
			}
			return err
		}

		var postIDs []string
		if err := tx.Model(&models.PostModel{}).
			Where("category_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.CommentModel{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM post_tags WHERE post_id IN ?", postIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.PostModel{}).Error; err != nil {
				return err
			}
		}

		var tagIDs []string
		if err := tx.Model(&models.TagModel{}).
			Where("category_id = ?", id).Pluck("id", &tagIDs).Error; err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			if err := tx.Exec("DELETE FROM post_tags WHERE tag_id IN ?", tagIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", tagIDs).Delete(&models.TagModel{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&cat).Error
	})
}
