package comment

import (
	"errors"
	"strings"

	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/apperr"
	"gorm.io/gorm"
)

type CreateCommentDTO struct {
	Content string `json:"content" binding:"required"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List() ([]models.CommentModel, error) {
	var comments []models.CommentModel
	return comments, s.db.Preload("User").Order("created_at ASC").Find(&comments).Error
}

func (s *Service) ListByPost(postID string) ([]models.CommentModel, error) {
	var count int64
	if err := s.db.Model(&models.PostModel{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.NotFound("post not found")
	}

	var comments []models.CommentModel
	return comments, s.db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
}

func (s *Service) Create(postID, userID string, dto *CreateCommentDTO) (*models.CommentModel, error) {
	content := strings.TrimSpace(dto.Content)
	if content == "" {
		return nil, apperr.Validation("content cannot be empty")
	}

	comment := models.CommentModel{Content: content, UserID: userID, PostID: postID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PostModel{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("post not found")
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Service) GetByID(id string) (*models.CommentModel, error) {
	var comment models.CommentModel
	if err := s.db.Preload("User").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

func (s *Service) Delete(id, callerID string) error {
	comment, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		return apperr.Forbidden("you can only delete your own comments")
	}
	return s.db.Delete(comment).Error
}
