package post

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/bloppost/core/internal/models"
)

// CreatePostDTO is the request body for creating a post.
type CreatePostDTO struct {
	Title         string   `json:"title"          binding:"required"`
	Content       string   `json:"content"        binding:"required"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage string   `json:"featured_image"`
	UserID        string   `json:"user_id"        binding:"required"`
	CategoryID    *string  `json:"category_id"`
	TagIDs        []string `json:"tag_ids"`
}

// UpdatePostDTO is the request body for updating a post (all fields optional).
// UserID is raw so an explicit JSON null can be told apart from an absent key.
type UpdatePostDTO struct {
	Title         *string         `json:"title"`
	Content       *string         `json:"content"`
	Excerpt       *string         `json:"excerpt"`
	FeaturedImage *string         `json:"featured_image"`
	UserID        json.RawMessage `json:"user_id"`
	CategoryID    *string         `json:"category_id"`
}

var jsonNull = []byte("null")

// userID decodes the raw user_id field: (value, present, explicit-null).
func (dto *UpdatePostDTO) userID() (string, bool, bool) {
	if len(dto.UserID) == 0 {
		return "", false, false
	}
	if bytes.Equal(bytes.TrimSpace(dto.UserID), jsonNull) {
		return "", true, true
	}
	var id string
	if err := json.Unmarshal(dto.UserID, &id); err != nil {
		return "", true, true
	}
	return id, true, false
}

// SetTagsDTO is the request body for replacing a post's tag set.
type SetTagsDTO struct {
	TagIDs []string `json:"tag_ids"`
}

// ListQuery holds query params for listing posts.
type ListQuery struct {
	Category *string `form:"category"`
	Tag      *string `form:"tag"`
}

type tagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type postResponse struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Content       string                `json:"content"`
	Excerpt       string                `json:"excerpt,omitempty"`
	FeaturedImage string                `json:"featured_image,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	Author        interface{}           `json:"author"`
	Category      *models.CategoryModel `json:"category"`
	Tags          []tagResponse         `json:"tags"`
}

func toResponse(p *models.PostModel) postResponse {
	tags := make([]tagResponse, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = tagResponse{ID: t.ID, Name: t.Name}
	}
	var author interface{}
	if p.User != nil {
		author = map[string]interface{}{
			"id":         p.User.ID,
			"username":   p.User.Username,
			"email":      p.User.Email,
			"created_at": p.User.CreatedAt,
		}
	}
	return postResponse{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		CreatedAt:     p.CreatedAt,
		Author:        author,
		Category:      p.Category,
		Tags:          tags,
	}
}
