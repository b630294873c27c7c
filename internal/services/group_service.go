package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"places-go/internal/logger"
	"places-go/internal/models"
	"places-go/internal/storage"
)

var (
	ErrGroupNameRequired  = errors.New("group name is required")
	ErrGroupNotFound      = errors.New("group not found")
	ErrNotGroupAdmin      = errors.New("only group admins can perform this action")
	ErrNotGroupCreator    = errors.New("only the group creator can perform this action")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrNotMember          = errors.New("user is not a member of this group")
	ErrCreatorCannotLeave = errors.New("the creator cannot leave their own group")
)

// GroupService 拥有群组与成员集合。成员资格不变式：
// 创建者恒为 admin 成员；(group, user) 至多一条成员记录；
// 删除群组时成员与消息一并清除。
type GroupService interface {
	CreateGroup(ctx context.Context, creatorID uint, name, description, imageURL string) (*models.Group, error)
	GetGroup(ctx context.Context, groupID uint) (*models.Group, error)
	UpdateGroup(ctx context.Context, userID, groupID uint, update storage.GroupUpdate) error
	DeleteGroup(ctx context.Context, userID, groupID uint) error
	AddMember(ctx context.Context, groupID, userID uint) error
	LeaveGroup(ctx context.Context, groupID, userID uint) error
	GetGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMemberInfo, error)
	GetGroupCreator(ctx context.Context, groupID uint) (uint, error)
	GetCreatedGroups(ctx context.Context, userID uint) ([]models.Group, error)
	GetMemberGroups(ctx context.Context, userID uint) ([]models.Group, error)
}

// groupService 是 GroupService 的实现。
type groupService struct {
	db        *gorm.DB
	groupRepo storage.GroupRepository
	userRepo  storage.UserRepository
}

// NewGroupService 创建一个新的 GroupService 实例。
func NewGroupService(db *gorm.DB, groupRepo storage.GroupRepository, userRepo storage.UserRepository) GroupService {
	return &groupService{
		db:        db,
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// CreateGroup creates the group and its creator's admin membership in
// one transaction; a group must never exist without its creator as
// admin.
func (s *groupService) CreateGroup(ctx context.Context, creatorID uint, name, description, imageURL string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}
	description = strings.TrimSpace(description)

	var created *models.Group
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txGroupRepo := storage.NewGormGroupRepository(tx)

		group := &models.Group{
			Name:        name,
			Description: description,
			Image:       imageURL,
			CreatorID:   creatorID,
		}
		if err := txGroupRepo.CreateGroup(ctx, group); err != nil {
			return fmt.Errorf("create group: %w", err)
		}

		member := &models.GroupMember{
			GroupID: group.ID,
			UserID:  creatorID,
			Role:    models.AdminRole,
		}
		if err := txGroupRepo.AddMember(ctx, member); err != nil {
			return fmt.Errorf("add creator as admin: %w", err)
		}

		created = group
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logger.L().Infow("group created", "group", created.ID, "creator", creatorID)
	return created, nil
}

// GetGroup 按 ID 获取群组。
func (s *groupService) GetGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group %d: %w", groupID, err)
	}
	return group, nil
}

// UpdateGroup 部分更新群组资料；仅创建者或 admin 成员可以修改。
func (s *groupService) UpdateGroup(ctx context.Context, userID, groupID uint, update storage.GroupUpdate) error {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return ErrGroupNameRequired
		}
		update.Name = &trimmed
	}

	if err := s.requireAdmin(ctx, groupID, userID); err != nil {
		return err
	}

	rows, err := s.groupRepo.UpdateGroup(ctx, groupID, update)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if rows == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// DeleteGroup removes the group together with its memberships and
// messages in one transaction. Creator only.
func (s *groupService) DeleteGroup(ctx context.Context, userID, groupID uint) error {
	creatorID, err := s.GetGroupCreator(ctx, groupID)
	if err != nil {
		return err
	}
	if creatorID != userID {
		return ErrNotGroupCreator
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txGroupRepo := storage.NewGormGroupRepository(tx)
		txMessageRepo := storage.NewGormMessageRepository(tx)

		if err := txMessageRepo.DeleteGroupMessages(ctx, groupID); err != nil {
			return fmt.Errorf("delete group messages: %w", err)
		}
		if err := txGroupRepo.RemoveAllMembers(ctx, groupID); err != nil {
			return fmt.Errorf("remove members: %w", err)
		}
		rows, err := txGroupRepo.DeleteGroup(ctx, groupID)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		if rows == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	logger.L().Infow("group deleted", "group", groupID, "creator", userID)
	return nil
}

// AddMember 把用户加入群组（member 角色）。用户或群组不存在返回相应错误。
func (s *groupService) AddMember(ctx context.Context, groupID, userID uint) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user %d: %w", userID, err)
	}

	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if isMember {
		return ErrAlreadyMember
	}

	member := &models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    models.MemberRole,
	}
	if err := s.groupRepo.AddMember(ctx, member); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// LeaveGroup 删除成员记录。创建者不能退出自己的群组，只能删除它。
func (s *groupService) LeaveGroup(ctx context.Context, groupID, userID uint) error {
	creatorID, err := s.GetGroupCreator(ctx, groupID)
	if err != nil {
		return err
	}
	if creatorID == userID {
		return ErrCreatorCannotLeave
	}

	rows, err := s.groupRepo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if rows == 0 {
		return ErrNotMember
	}
	return nil
}

// GetGroupMembers 列出群组全部成员及角色。
func (s *groupService) GetGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMemberInfo, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groupRepo.GetGroupMembers(ctx, groupID)
}

// GetGroupCreator 返回群组创建者 ID。
func (s *groupService) GetGroupCreator(ctx context.Context, groupID uint) (uint, error) {
	creatorID, err := s.groupRepo.GetCreatorID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrGroupNotFound
		}
		return 0, fmt.Errorf("get creator of group %d: %w", groupID, err)
	}
	return creatorID, nil
}

// GetCreatedGroups 列出该用户创建的群组。
func (s *groupService) GetCreatedGroups(ctx context.Context, userID uint) ([]models.Group, error) {
	return s.groupRepo.GetCreatedGroups(ctx, userID)
}

// GetMemberGroups 列出该用户作为成员加入（非创建）的群组。
func (s *groupService) GetMemberGroups(ctx context.Context, userID uint) ([]models.Group, error) {
	return s.groupRepo.GetMemberGroups(ctx, userID)
}

// requireAdmin 校验用户是创建者或群内 admin 成员。
func (s *groupService) requireAdmin(ctx context.Context, groupID, userID uint) error {
	creatorID, err := s.GetGroupCreator(ctx, groupID)
	if err != nil {
		return err
	}
	if creatorID == userID {
		return nil
	}

	member, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupAdmin
		}
		return fmt.Errorf("get member: %w", err)
	}
	if member.Role != models.AdminRole {
		return ErrNotGroupAdmin
	}
	return nil
}
