package post

import (
	"errors"
	"strings"

	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/apperr"
	"github.com/bloppost/core/internal/pkg/markdown"
	"gorm.io/gorm"
)

// Service handles post business logic.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns posts newest first, with author, category, and tags embedded.
func (s *Service) List(lq ListQuery) ([]models.PostModel, error) {
	tx := s.db.Model(&models.PostModel{}).
		Preload("User").
		Preload("Category").
		Preload("Tags").
		Order("posts.created_at DESC")

	if lq.Category != nil {
		tx = tx.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.name = ?", *lq.Category)
	}
	if lq.Tag != nil {
		tx = tx.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", *lq.Tag)
	}

	var posts []models.PostModel
	return posts, tx.Find(&posts).Error
}

// GetByID fetches a single post with its associations.
func (s *Service) GetByID(id string) (*models.PostModel, error) {
	var post models.PostModel
	err := s.db.Preload("User").Preload("Category").Preload("Tags").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, err
	}
	return &post, nil
}

// Create inserts a new post. The author must exist; the category and every
// tag id, when supplied, must exist. Tag links are written atomically with
// the post row.
func (s *Service) Create(dto *CreatePostDTO) (*models.PostModel, error) {
	post := models.PostModel{
		Title:         strings.TrimSpace(dto.Title),
		Content:       dto.Content,
		Excerpt:       strings.TrimSpace(dto.Excerpt),
		FeaturedImage: dto.FeaturedImage,
		UserID:        dto.UserID,
		CategoryID:    dto.CategoryID,
	}
	if post.Excerpt == "" {
		post.Excerpt = markdown.Excerpt(post.Content)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, dto.UserID); err != nil {
			return err
		}
		if dto.CategoryID != nil {
			if err := ensureCategoryExists(tx, *dto.CategoryID); err != nil {
				return err
			}
		}
		tags, err := loadTags(tx, dto.TagIDs)
		if err != nil {
			return err
		}
		post.Tags = tags
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(post.ID)
}

// Update applies a partial update. Only supplied fields change; an explicit
// null user_id is rejected, a new user_id must reference an existing user.
func (s *Service) Update(id string, dto *UpdatePostDTO) (*models.PostModel, error) {
	post, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.Content != nil {
		if *dto.Content == "" {
			return nil, apperr.Validation("content cannot be empty")
		}
		updates["content"] = *dto.Content
	}
	if dto.Excerpt != nil {
		updates["excerpt"] = strings.TrimSpace(*dto.Excerpt)
	}
	if dto.FeaturedImage != nil {
		updates["featured_image"] = *dto.FeaturedImage
	}
	if userID, present, isNull := dto.userID(); present {
		if isNull {
			return nil, apperr.Validation("user_id cannot be null")
		}
		if err := ensureUserExists(s.db, userID); err != nil {
			return nil, err
		}
		updates["user_id"] = userID
	}
	if dto.CategoryID != nil {
		if err := ensureCategoryExists(s.db, *dto.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *dto.CategoryID
	}

	// Refresh the derived excerpt when content changes and none was kept.
	if dto.Content != nil && dto.Excerpt == nil && post.Excerpt == "" {
		updates["excerpt"] = markdown.Excerpt(*dto.Content)
	}

	if err := s.db.Model(post).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// ReplaceTags swaps the post's full tag set in one transaction. Any unknown
// tag id fails the whole operation and leaves prior associations intact.
func (s *Service) ReplaceTags(postID string, tagIDs []string) (*models.PostModel, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.PostModel
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("post not found")
			}
			return err
		}
		tags, err := loadTags(tx, tagIDs)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return tx.Model(&post).Association("Tags").Clear()
		}
		return tx.Model(&post).Association("Tags").Replace(&tags)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(postID)
}

// Delete removes the post, its comments, and its tag links atomically.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post models.PostModel
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("post not found")
			}
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

func ensureUserExists(tx *gorm.DB, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("user_id cannot be null")
	}
	var count int64
	if err := tx.Model(&models.UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func ensureCategoryExists(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&models.CategoryModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}

// loadTags resolves tag ids to rows; every id must exist.
func loadTags(tx *gorm.DB, tagIDs []string) ([]models.TagModel, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	unique := make([]string, 0, len(tagIDs))
	seen := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var tags []models.TagModel
	if err := tx.Where("id IN ?", unique).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		return nil, apperr.NotFound("tag not found")
	}
	return tags, nil
}
