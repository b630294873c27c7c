package models

import "time"

// Group 代表一个带聊天功能的群组。创建者身份不可转移。
type Group struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	Image       string    `gorm:"type:varchar(255)" json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定 Group 模型的表名。
func (Group) TableName() string {
	return "groups"
}

// GroupMemberRole 定义了用户在群组中的角色。
type GroupMemberRole string

const (
	AdminRole  GroupMemberRole = "admin"
	MemberRole GroupMemberRole = "member"
)

// GroupMember 将用户链接到群组并记录其角色。
// (group_id, user_id) 是复合主键，保证成员唯一。
type GroupMember struct {
	GroupID  uint            `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	UserID   uint            `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Role     GroupMemberRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt time.Time       `gorm:"autoCreateTime" json:"joined_at"`
}

// TableName 指定 GroupMember 模型的表名。
func (GroupMember) TableName() string {
	return "group_members"
}

// GroupMemberInfo is a member row joined with the user's public info.
type GroupMemberInfo struct {
	UserID         uint            `json:"user_id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Bio            string          `json:"bio,omitempty"`
	ProfilePicture string          `json:"profile_picture,omitempty"`
	Role           GroupMemberRole `json:"role"`
}
