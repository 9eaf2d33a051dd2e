package models

// TagModel belongs to one category and links to posts through post_tags.
// Deleting a tag removes join rows only, never the posts.
type TagModel struct {
	Base
	Name       string         `json:"name"        gorm:"uniqueIndex;not null"`
	CategoryID string         `json:"category_id" gorm:"index;not null"`
	Category   *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`

	Posts []PostModel `json:"posts,omitempty" gorm:"many2many:post_tags;joinForeignKey:TagID;joinReferences:PostID"`
}

func (TagModel) TableName() string { return "tags" }
