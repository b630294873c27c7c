package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"places-go/internal/models"
	"places-go/internal/storage"
)

var (
	ErrMessageContentRequired = errors.New("message content is required")
	ErrSenderNotMember        = errors.New("sender is not a member of this group")
)

// MessageService 拥有群聊消息日志：仅追加与按群读取，不支持编辑删除单条消息。
type MessageService interface {
	SendGroupMessage(ctx context.Context, groupID, senderID uint, content string) (*models.GroupMessage, error)
	GetGroupMessages(ctx context.Context, groupID uint) ([]models.GroupMessageInfo, error)
	GetUserChats(ctx context.Context, userID uint) ([]models.ChatSummary, error)
}

// messageService 是 MessageService 的实现。
type messageService struct {
	messageRepo storage.MessageRepository
	groupRepo   storage.GroupRepository
}

// NewMessageService 创建一个新的 MessageService 实例。
func NewMessageService(messageRepo storage.MessageRepository, groupRepo storage.GroupRepository) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		groupRepo:   groupRepo,
	}
}

// SendGroupMessage 追加一条群消息；发送者必须是群成员。
func (s *messageService) SendGroupMessage(ctx context.Context, groupID, senderID uint, content string) (*models.GroupMessage, error) {
	if content == "" {
		return nil, ErrMessageContentRequired
	}

	if _, err := s.groupRepo.GetCreatorID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group %d: %w", groupID, err)
	}

	isMember, err := s.groupRepo.IsMember(ctx, groupID, senderID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrSenderNotMember
	}

	message := &models.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Message:  content,
		SentAt:   time.Now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	return message, nil
}

// GetGroupMessages 返回群组全部消息，带发送者姓名，按时间倒序。
func (s *messageService) GetGroupMessages(ctx context.Context, groupID uint) ([]models.GroupMessageInfo, error) {
	if _, err := s.groupRepo.GetCreatorID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group %d: %w", groupID, err)
	}
	return s.messageRepo.GetGroupMessages(ctx, groupID)
}

// GetUserChats 返回该用户有发言的每个群的最新一条消息摘要。
func (s *messageService) GetUserChats(ctx context.Context, userID uint) ([]models.ChatSummary, error) {
	return s.messageRepo.GetUserChats(ctx, userID)
}
