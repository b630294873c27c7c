package models

import "time"

// GroupMessage 是群聊消息日志中的一条记录，只追加不修改。
type GroupMessage struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	GroupID  uint      `gorm:"not null;index" json:"group_id"`
	SenderID uint      `gorm:"not null" json:"sender_id"`
	Message  string    `gorm:"type:text;not null" json:"message"`
	SentAt   time.Time `gorm:"not null;index" json:"sent_at"`
}

// GroupMessageInfo is a message joined with the sender's display info.
type GroupMessageInfo struct {
	ID             uint      `json:"id"`
	GroupID        uint      `json:"group_id"`
	SenderID       uint      `json:"sender_id"`
	Message        string    `json:"message"`
	SentAt         time.Time `json:"sent_at"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
}

// ChatSummary 代表用户聊天列表中的一项：某群组及其最近一条消息。
type ChatSummary struct {
	GroupID    uint      `json:"group_id"`
	GroupName  string    `json:"group_name"`
	GroupImage string    `json:"group_image,omitempty"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}
