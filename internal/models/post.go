package models

// PostModel is a blog post. The author is required; category and tags are
// optional. FeaturedImage is an opaque reference produced by the file module.
type PostModel struct {
	Base
	Title         string  `json:"title"          gorm:"not null"`
	Content       string  `json:"content"        gorm:"type:longtext;not null"`
	Excerpt       string  `json:"excerpt"        gorm:"type:varchar(500)"`
	FeaturedImage string  `json:"featured_image"`
	UserID        string  `json:"user_id"        gorm:"index;not null"`
	CategoryID    *string `json:"category_id"    gorm:"index"`

	User     *UserModel     `json:"author,omitempty"   gorm:"foreignKey:UserID"`
	Category *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags     []TagModel     `json:"tags"               gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID"`
	Comments []CommentModel `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

func (PostModel) TableName() string { return "posts" }
