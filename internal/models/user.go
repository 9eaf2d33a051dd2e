package models

import "time"

// Role controls which write operations a user may perform.
type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAuthor }

// UserModel represents a registered account.
type UserModel struct {
	Base
	Username string `json:"username" gorm:"not null"`
	Email    string `json:"email"    gorm:"uniqueIndex;not null"`
	Password string `json:"-"        gorm:"not null"`
	Role     Role   `json:"role"     gorm:"type:varchar(16);default:user;not null"`

	Posts    []PostModel    `json:"posts,omitempty"    gorm:"foreignKey:UserID"`
	Comments []CommentModel `json:"comments,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

// UserSession tracks signed-in JWT sessions for revocation and device management.
type UserSession struct {
	Base
	UserID    string     `json:"user_id"    gorm:"index;not null"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
}

func (UserSession) TableName() string { return "user_sessions" }
