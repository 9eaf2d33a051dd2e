package tag

import (
	"errors"
	"strings"

	"github.com/bloppost/core/internal/database"
	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/apperr"
	"gorm.io/gorm"
)

type CreateTagDTO struct {
	Name       string `json:"name" binding:"required"`
	CategoryID string `json:"category_id" binding:"required"`
}

type UpdateTagDTO struct {
	Name       *string `json:"name"`
	CategoryID *string `json:"category_id"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List() ([]models.TagModel, error) {
	var tags []models.TagModel
	return tags, s.db.Preload("Category").Order("created_at ASC").Find(&tags).Error
}

func (s *Service) GetByID(id string) (*models.TagModel, error) {
	var tag models.TagModel
	if err := s.db.Preload("Category").First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tag not found")
		}
		return nil, err
	}
	return &tag, nil
}

func (s *Service) Create(dto *CreateTagDTO) (*models.TagModel, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, apperr.Validation("name cannot be empty")
	}
	if err := s.ensureCategoryExists(s.db, dto.CategoryID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.TagModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Duplicate("tag name already exists")
	}

	tag := models.TagModel{Name: name, CategoryID: dto.CategoryID}
	if err := s.db.Create(&tag).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperr.Duplicate("tag name already exists")
		}
		return nil, err
	}
	return s.GetByID(tag.ID)
}

func (s *Service) Update(id string, dto *UpdateTagDTO) (*models.TagModel, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		var count int64
		if err := s.db.Model(&models.TagModel{}).
			Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.Duplicate("tag name already exists")
		}
		updates["name"] = name
	}
	if dto.CategoryID != nil {
		if err := s.ensureCategoryExists(s.db, *dto.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *dto.CategoryID
	}

	if err := s.db.Model(&models.TagModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperr.Duplicate("tag name already exists")
		}
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes the tag and its post associations. Posts keep their other
// tags; nothing else is touched.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var tag models.TagModel
		if err := tx.First(&tag, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tag not found")
			}
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

func (s *Service) ensureCategoryExists(tx *gorm.DB, id string) error {
	if id == "" {
		return apperr.Validation("category_id cannot be empty")
	}
	var count int64
	if err := tx.Model(&models.CategoryModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}
