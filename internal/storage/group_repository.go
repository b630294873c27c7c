package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// GroupUpdate 是群组信息的部分更新：nil 字段不修改。
type GroupUpdate struct {
	Name        *string
	Description *string
	Image       *string
}

// GroupRepository 定义了群组与成员数据操作的接口。
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
	GetCreatorID(ctx context.Context, groupID uint) (uint, error)
	UpdateGroup(ctx context.Context, groupID uint, update GroupUpdate) (int64, error)
	DeleteGroup(ctx context.Context, groupID uint) (int64, error)
	GetCreatedGroups(ctx context.Context, creatorID uint) ([]models.Group, error)
	GetMemberGroups(ctx context.Context, userID uint) ([]models.Group, error)

	AddMember(ctx context.Context, member *models.GroupMember) error
	GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error)
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID uint) (int64, error)
	RemoveAllMembers(ctx context.Context, groupID uint) error
	GetGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMemberInfo, error)
}

// gormGroupRepository 使用 GORM 实现 GroupRepository。
type gormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GORM-based GroupRepository.
func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &gormGroupRepository{db: db}
}

// CreateGroup 创建一个新的群组。
func (r *gormGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// GetGroupByID 通过ID检索群组。
func (r *gormGroupRepository) GetGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetCreatorID returns the creator of a group, or
// gorm.ErrRecordNotFound when the group does not exist.
func (r *gormGroupRepository) GetCreatorID(ctx context.Context, groupID uint) (uint, error) {
	var group models.Group
	err := r.db.WithContext(ctx).Select("creator_id").First(&group, groupID).Error
	if err != nil {
		return 0, err
	}
	return group.CreatorID, nil
}

// UpdateGroup applies the provided fields only, from a fixed field
// enumeration, and returns the number of affected rows.
func (r *gormGroupRepository) UpdateGroup(ctx context.Context, groupID uint, update GroupUpdate) (int64, error) {
	values := map[string]interface{}{}
	if update.Name != nil {
		values["name"] = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		values["description"] = strings.TrimSpace(*update.Description)
	}
	if update.Image != nil {
		values["image"] = *update.Image
	}
	if len(values) == 0 {
		return 0, errors.New("no fields to update")
	}

	res := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).Updates(values)
	return res.RowsAffected, res.Error
}

// DeleteGroup 物理删除群组行，返回受影响行数。调用方须先清理成员。
func (r *gormGroupRepository) DeleteGroup(ctx context.Context, groupID uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Group{}, groupID)
	return res.RowsAffected, res.Error
}

// GetCreatedGroups 返回某用户创建的全部群组，最新在前。
func (r *gormGroupRepository) GetCreatedGroups(ctx context.Context, creatorID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

// GetMemberGroups returns groups the user belongs to, excluding the
// ones they created.
func (r *gormGroupRepository) GetMemberGroups(ctx context.Context, userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Model(&models.Group{}).
		Joins("JOIN group_members ON groups.id = group_members.group_id").
		Where("group_members.user_id = ? AND groups.creator_id != ?", userID, userID).
		Order("groups.created_at DESC").
		Find(&groups).Error
	return groups, err
}

// AddMember 向群组中添加成员，复合主键冲突由调用方预先检查。
func (r *gormGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetMember 获取群组中的特定成员信息。
func (r *gormGroupRepository) GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// IsMember 检查用户是否是群组成员。
func (r *gormGroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RemoveMember 从群组中移除成员，返回受影响的行数。
func (r *gormGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	return res.RowsAffected, res.Error
}

// RemoveAllMembers 清空群组的全部成员行，用于删除群组前的级联。
func (r *gormGroupRepository) RemoveAllMembers(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.GroupMember{}).Error
}

// GetGroupMembers 返回群组成员及其公开信息。
func (r *gormGroupRepository) GetGroupMembers(ctx context.Context, groupID uint) ([]models.GroupMemberInfo, error) {
	var members []models.GroupMemberInfo
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Select("users.id AS user_id", "users.first_name", "users.last_name",
			"users.bio", "users.profile_picture", "group_members.role").
		Joins("JOIN users ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Scan(&members).Error
	return members, err
}
