package models

// CategoryModel groups posts and owns its tags.
type CategoryModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null"`

	Posts []PostModel `json:"posts,omitempty" gorm:"foreignKey:CategoryID"`
	Tags  []TagModel  `json:"tags,omitempty"  gorm:"foreignKey:CategoryID"`
}

func (CategoryModel) TableName() string { return "categories" }
