package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"places-go/internal/models"
	"places-go/internal/storage"
)

func newGroupService(db *gorm.DB) GroupService {
	return NewGroupService(db, storage.NewGormGroupRepository(db), storage.NewGormUserRepository(db))
}

func TestCreateGroup(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")

	group, err := svc.CreateGroup(ctx, creator, "Hikers", "Weekend hikes", "")
	require.NoError(t, err)
	require.NotZero(t, group.ID)

	// 创建者自动成为 admin 成员
	members, err := svc.GetGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, creator, members[0].UserID)
	assert.Equal(t, models.AdminRole, members[0].Role)

	creatorID, err := svc.GetGroupCreator(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, creator, creatorID)
}

func TestCreateGroupRequiresName(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")
	_, err := svc.CreateGroup(ctx, creator, "", "no name", "")
	assert.ErrorIs(t, err, ErrGroupNameRequired)

	// 纯空白名称同样无效
	_, err = svc.CreateGroup(ctx, creator, "   ", "no name", "")
	assert.ErrorIs(t, err, ErrGroupNameRequired)

	// 名称两端空白被去除后保存
	group, err := svc.CreateGroup(ctx, creator, "  Hikers  ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Hikers", group.Name)
}

func TestCreateGroupAtomicity(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")

	// 让成员插入失败：去掉成员表。整个事务必须回滚，不能留下无主群组。
	require.NoError(t, db.Migrator().DropTable(&models.GroupMember{}))

	_, err := svc.CreateGroup(ctx, creator, "Doomed", "", "")
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Group{}).Count(&count).Error)
	assert.Zero(t, count, "group row must not survive a failed membership insert")
}

func TestAddMember(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	group, err := svc.CreateGroup(ctx, creator, "Hikers", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, group.ID, bob))

	// 重复加入
	assert.ErrorIs(t, svc.AddMember(ctx, group.ID, bob), ErrAlreadyMember)

	// 不存在的用户或群组
	assert.ErrorIs(t, svc.AddMember(ctx, group.ID, 9999), ErrUserNotFound)
	assert.ErrorIs(t, svc.AddMember(ctx, 9999, bob), ErrGroupNotFound)

	members, err := svc.GetGroupMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestLeaveGroup(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	group, err := svc.CreateGroup(ctx, creator, "Hikers", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, group.ID, bob))

	// 创建者不能退出自己的群组
	assert.ErrorIs(t, svc.LeaveGroup(ctx, group.ID, creator), ErrCreatorCannotLeave)

	require.NoError(t, svc.LeaveGroup(ctx, group.ID, bob))
	assert.ErrorIs(t, svc.LeaveGroup(ctx, group.ID, bob), ErrNotMember)
}

func TestUpdateGroupAuthorization(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	group, err := svc.CreateGroup(ctx, creator, "Hikers", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, group.ID, bob))

	newName := "Trail Runners"
	update := storage.GroupUpdate{Name: &newName}

	// 普通成员不能修改
	assert.ErrorIs(t, svc.UpdateGroup(ctx, bob, group.ID, update), ErrNotGroupAdmin)

	// 创建者可以
	require.NoError(t, svc.UpdateGroup(ctx, creator, group.ID, update))
	updated, err := svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trail Runners", updated.Name)
	assert.Equal(t, "", updated.Description, "untouched fields keep their value")

	empty := ""
	assert.ErrorIs(t, svc.UpdateGroup(ctx, creator, group.ID, storage.GroupUpdate{Name: &empty}), ErrGroupNameRequired)

	// 纯空白名称同样被拒绝，不得落库为空名
	blank := "   "
	assert.ErrorIs(t, svc.UpdateGroup(ctx, creator, group.ID, storage.GroupUpdate{Name: &blank}), ErrGroupNameRequired)
	unchanged, err := svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trail Runners", unchanged.Name)

	padded := "  City Walkers  "
	require.NoError(t, svc.UpdateGroup(ctx, creator, group.ID, storage.GroupUpdate{Name: &padded}))
	trimmedResult, err := svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "City Walkers", trimmedResult.Name)
}

func TestDeleteGroupCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	msgSvc := NewMessageService(storage.NewGormMessageRepository(db), storage.NewGormGroupRepository(db))
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	group, err := svc.CreateGroup(ctx, creator, "Hikers", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, group.ID, bob))
	_, err = msgSvc.SendGroupMessage(ctx, group.ID, bob, "hello")
	require.NoError(t, err)

	// 非创建者不能删除
	assert.ErrorIs(t, svc.DeleteGroup(ctx, bob, group.ID), ErrNotGroupCreator)

	require.NoError(t, svc.DeleteGroup(ctx, creator, group.ID))

	_, err = svc.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	var memberCount, messageCount int64
	require.NoError(t, db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&memberCount).Error)
	require.NoError(t, db.Model(&models.GroupMessage{}).Where("group_id = ?", group.ID).Count(&messageCount).Error)
	assert.Zero(t, memberCount)
	assert.Zero(t, messageCount)
}

func TestGroupListings(t *testing.T) {
	db := setupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	creator := createTestUser(t, db, "owner@example.com", "Omar", "Ouali")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	own, err := svc.CreateGroup(ctx, creator, "Hikers", "", "")
	require.NoError(t, err)
	other, err := svc.CreateGroup(ctx, bob, "Readers", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, other.ID, creator))

	created, err := svc.GetCreatedGroups(ctx, creator)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, own.ID, created[0].ID)

	// member-groups 只含加入的群，不含自建的
	joined, err := svc.GetMemberGroups(ctx, creator)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, other.ID, joined[0].ID)
}
