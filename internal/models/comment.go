package models

// CommentModel is a comment on a post. Both the author and the post are required.
type CommentModel struct {
	Base
	Content string `json:"content" gorm:"type:text;not null"`
	UserID  string `json:"user_id" gorm:"index;not null"`
	PostID  string `json:"post_id" gorm:"index;not null"`

	User *UserModel `json:"author,omitempty" gorm:"foreignKey:UserID"`
	Post *PostModel `json:"-"                gorm:"foreignKey:PostID"`
}

func (CommentModel) TableName() string { return "comments" }
