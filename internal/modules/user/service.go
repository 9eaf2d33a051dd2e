package user

import (
	"errors"
	"strings"

	"github.com/bloppost/core/internal/database"
	"github.com/bloppost/core/internal/models"
	"github.com/bloppost/core/internal/pkg/apperr"
	"github.com/bloppost/core/internal/pkg/password"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns all users in insertion order.
func (s *Service) List() ([]models.UserModel, error) {
	var users []models.UserModel
	return users, s.db.Order("created_at ASC").Find(&users).Error
}

func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// Update applies a partial update. Only supplied fields change.
func (s *Service) Update(id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Username != nil {
		if strings.TrimSpace(*dto.Username) == "" {
			return nil, apperr.Validation("username cannot be empty")
		}
		updates["username"] = strings.TrimSpace(*dto.Username)
	}
	if dto.Email != nil {
		email := strings.TrimSpace(*dto.Email)
		if !strings.Contains(email, "@") {
			return nil, apperr.Validation("invalid email address")
		}
		var count int64
		if err := s.db.Model(&models.UserModel{}).
			Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.Duplicate("email already registered")
		}
		updates["email"] = email
	}
	if dto.Password != nil {
		hash, err := password.Hash(*dto.Password)
		if err != nil {
			if errors.Is(err, password.ErrTooShort) {
				return nil, apperr.Validation("%s", err.Error())
			}
			return nil, err
		}
		updates["password"] = hash
	}
	if dto.Role != nil {
		role := models.Role(*dto.Role)
		if !role.Valid() {
			return nil, apperr.Validation("role must be %q or %q", models.RoleUser, models.RoleAuthor)
		}
		updates["role"] = role
	}

	if err := s.db.Model(u).Updates(updates).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperr.Duplicate("email already registered")
		}
		return nil, err
	}
	return u, nil
}

// Delete removes the user and everything they own in one transaction:
// comments, posts (with those posts' comments and tag links), and sessions.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var u models.UserModel
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user not found")
			}
			return err
		}

		var postIDs []string
		if err := tx.Model(&models.PostModel{}).
			Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
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

		if err := tx.Where("user_id = ?", id).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
}
