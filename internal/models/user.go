package models

// User 代表系统中的一个注册用户。
type User struct {
	BaseModel
	Email          string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash   string `gorm:"type:varchar(255);not null" json:"-"` // 不暴露密码哈希
	FirstName      string `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string `gorm:"type:varchar(100)" json:"last_name"`
	Bio            string `gorm:"type:text" json:"bio,omitempty"`
	ProfilePicture string `gorm:"type:varchar(255)" json:"profile_picture,omitempty"`
}

// UserBasicInfo holds the minimal public information about a user.
// 用于好友列表、群成员列表等场景。
type UserBasicInfo struct {
	ID             uint   `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// UserSearchResult is a user row annotated with the relationship between
// the searching user and this user: friend, request_sent,
// request_received or none.
type UserSearchResult struct {
	ID                 uint   `json:"id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	ProfilePicture     string `json:"profile_picture,omitempty"`
	RelationshipStatus string `json:"relationship_status"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}
