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

func newFriendService(db *gorm.DB) FriendService {
	return NewFriendService(
		db,
		storage.NewGormUserRepository(db),
		storage.NewGormFriendRequestRepository(db),
		storage.NewGormFriendshipRepository(db),
	)
}

func TestSendFriendRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	request, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestStatusPending, request.Status)
	assert.Equal(t, alice, request.SenderID)
	assert.Equal(t, bob, request.ReceiverID)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")

	_, err := svc.SendFriendRequest(context.Background(), alice, alice)
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestSendFriendRequestDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	_, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	// 同方向重复
	_, err = svc.SendFriendRequest(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrRequestPending)

	// 反方向也被同一条待处理请求挡住
	_, err = svc.SendFriendRequest(ctx, bob, alice)
	assert.ErrorIs(t, err, ErrRequestPending)
}

// 规范对唯一索引兜底：即使事务内检查被并发绕过，镜像方向的第二条
// 插入也会被索引拒绝。
func TestMirroredRequestBlockedByIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := storage.NewGormFriendRequestRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	first := models.NewFriendRequest(alice, bob)
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, minUint(alice, bob), first.PairMinID)
	assert.Equal(t, maxUint(alice, bob), first.PairMaxID)

	mirrored := models.NewFriendRequest(bob, alice)
	assert.Error(t, repo.Create(ctx, mirrored))

	var count int64
	require.NoError(t, db.Model(&models.FriendRequest{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAcceptFriendRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	request, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	require.NoError(t, svc.AcceptFriendRequest(ctx, request.ID, bob))

	// 接受后双方互为好友，且好友关系以规范顺序存储
	var friendship models.Friendship
	require.NoError(t, db.First(&friendship).Error)
	assert.Equal(t, minUint(alice, bob), friendship.User1ID)
	assert.Equal(t, maxUint(alice, bob), friendship.User2ID)

	friends, err := svc.GetFriendsList(ctx, alice)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob, friends[0].ID)

	friends, err = svc.GetFriendsList(ctx, bob)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice, friends[0].ID)

	// 已是好友后再次发请求被拒
	_, err = svc.SendFriendRequest(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestAcceptRequiresReceiver(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")
	carol := createTestUser(t, db, "carol@example.com", "Carol", "Cherif")

	request, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	// 只有接收者能接受；其他人视为请求不存在
	err = svc.AcceptFriendRequest(ctx, request.ID, carol)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	// 发送者自己也不能接受
	err = svc.AcceptFriendRequest(ctx, request.ID, alice)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRejectFriendRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	request, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	require.NoError(t, svc.RejectFriendRequest(ctx, request.ID, bob))

	// 拒绝后不是好友
	friends, err := svc.GetFriendsList(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, friends)

	// 已处理的请求不能再被接受或拒绝
	assert.ErrorIs(t, svc.AcceptFriendRequest(ctx, request.ID, bob), ErrRequestNotFound)
	assert.ErrorIs(t, svc.RejectFriendRequest(ctx, request.ID, bob), ErrRequestNotFound)

	// 留下的 rejected 行挡住新的请求
	_, err = svc.SendFriendRequest(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrRequestExists)
}

func TestCancelFriendRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	request, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)

	// 只有发送者能撤回
	assert.ErrorIs(t, svc.CancelFriendRequest(ctx, request.ID, bob), ErrRequestNotFound)
	require.NoError(t, svc.CancelFriendRequest(ctx, request.ID, alice))

	// 撤回删除了请求行，可以重新发送
	_, err = svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
}

func TestRemoveFriend(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")

	request, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, request.ID, bob))

	// 任一方都能解除好友关系（这里用 bob 发起，参数顺序无关）
	require.NoError(t, svc.RemoveFriend(ctx, bob, alice))

	friends, err := svc.GetFriendsList(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, friends)

	// 解除时顺带清掉历史请求行，可以从头再来
	_, err = svc.SendFriendRequest(ctx, bob, alice)
	require.NoError(t, err)

	// 没有任何关系时解除报 NotFound
	carol := createTestUser(t, db, "carol@example.com", "Carol", "Cherif")
	assert.ErrorIs(t, svc.RemoveFriend(ctx, alice, carol), ErrNothingToRemove)
}

func TestGetPendingRequests(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")
	carol := createTestUser(t, db, "carol@example.com", "Carol", "Cherif")

	_, err := svc.SendFriendRequest(ctx, alice, carol)
	require.NoError(t, err)
	_, err = svc.SendFriendRequest(ctx, bob, carol)
	require.NoError(t, err)

	incoming, err := svc.GetFriendRequests(ctx, carol)
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	sent, err := svc.GetSentRequests(ctx, alice)
	require.NoError(t, err)
	require.Len(t, sent, 1)

	// 处理后从待处理列表消失
	require.NoError(t, svc.AcceptFriendRequest(ctx, incoming[0].ID, carol))
	incoming, err = svc.GetFriendRequests(ctx, carol)
	require.NoError(t, err)
	assert.Len(t, incoming, 1)
}

func TestSearchUsersWithRelationship(t *testing.T) {
	db := setupTestDB(t)
	svc := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com", "Alice", "Ahmed")
	bob := createTestUser(t, db, "bob@example.com", "Bob", "Brik")
	carol := createTestUser(t, db, "carol@example.com", "Carol", "Cherif")
	dave := createTestUser(t, db, "dave@example.com", "Dave", "Djamel")

	// alice-bob 好友，alice→carol 待处理，dave 无关系
	request, err := svc.SendFriendRequest(ctx, alice, bob)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, request.ID, bob))
	_, err = svc.SendFriendRequest(ctx, alice, carol)
	require.NoError(t, err)

	results, err := svc.SearchUsers(ctx, alice, "", 1, 10)
	require.NoError(t, err)

	statuses := make(map[uint]string)
	for _, r := range results {
		statuses[r.ID] = r.RelationshipStatus
		assert.NotEqual(t, alice, r.ID, "searcher must not appear in results")
	}
	assert.Equal(t, "friend", statuses[bob])
	assert.Equal(t, "request_sent", statuses[carol])
	assert.Equal(t, "none", statuses[dave])

	// 从 carol 的视角，alice 的请求是收到的
	results, err = svc.SearchUsers(ctx, carol, "Alice", 1, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "request_received", results[0].RelationshipStatus)
}

func minUint(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}

func maxUint(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}
