package storage

import (
	"context"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// MessageRepository 定义了群聊消息日志的数据操作接口。
type MessageRepository interface {
	Create(ctx context.Context, message *models.GroupMessage) error
	GetGroupMessages(ctx context.Context, groupID uint) ([]models.GroupMessageInfo, error)
	GetUserChats(ctx context.Context, userID uint) ([]models.ChatSummary, error)
	DeleteGroupMessages(ctx context.Context, groupID uint) error
}

// gormMessageRepository 使用 GORM 实现 MessageRepository。
type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based MessageRepository.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create 追加一条群消息记录。
func (r *gormMessageRepository) Create(ctx context.Context, message *models.GroupMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetGroupMessages 返回群组全部消息及发送者展示信息，最新在前。
func (r *gormMessageRepository) GetGroupMessages(ctx context.Context, groupID uint) ([]models.GroupMessageInfo, error) {
	var messages []models.GroupMessageInfo
	err := r.db.WithContext(ctx).Model(&models.GroupMessage{}).
		Select("group_messages.id", "group_messages.group_id", "group_messages.sender_id",
			"group_messages.message", "group_messages.sent_at",
			"users.first_name", "users.last_name", "users.profile_picture").
		Joins("JOIN users ON group_messages.sender_id = users.id").
		Where("group_messages.group_id = ?", groupID).
		Order("group_messages.sent_at DESC").
		Scan(&messages).Error
	return messages, err
}

// GetUserChats returns, for every group the user has sent into, the
// most recent message together with the group's metadata, ordered by
// that message's time descending.
func (r *gormMessageRepository) GetUserChats(ctx context.Context, userID uint) ([]models.ChatSummary, error) {
	var chats []models.ChatSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT g.id AS group_id, g.name AS group_name, g.image AS group_image,
		       gm.message, gm.sent_at
		FROM group_messages gm
		JOIN groups g ON gm.group_id = g.id
		WHERE gm.sender_id = ?
		  AND gm.sent_at = (
		    SELECT MAX(gm2.sent_at) FROM group_messages gm2
		    WHERE gm2.group_id = gm.group_id AND gm2.sender_id = ?
		  )
		ORDER BY gm.sent_at DESC`, userID, userID).
		Scan(&chats).Error
	return chats, err
}

// DeleteGroupMessages 清空指定群组的全部消息（删除群组时级联使用）。
func (r *gormMessageRepository) DeleteGroupMessages(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&models.GroupMessage{}).Error
}
