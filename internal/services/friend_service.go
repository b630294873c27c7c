package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"places-go/internal/logger"
	"places-go/internal/models"
	"places-go/internal/storage"
)

var (
	ErrSelfRequest     = errors.New("cannot send friend request to yourself")
	ErrAlreadyFriends  = errors.New("you are already friends")
	ErrRequestPending  = errors.New("there is a pending friend request")
	ErrRequestExists   = errors.New("there is a previous friend request")
	ErrRequestNotFound = errors.New("friend request not found or already processed")
	ErrNothingToRemove = errors.New("no friendship or requests found between users")
)

// FriendService 拥有好友请求状态机与对称好友关系集合。
// 每个无序用户对的状态：none → pending → {accepted, rejected}；
// accepted 同时建立好友关系，cancel 与 unfriend 清除请求行回到 none。
type FriendService interface {
	SendFriendRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, requestID, acceptingUserID uint) error
	RejectFriendRequest(ctx context.Context, requestID, receiverID uint) error
	CancelFriendRequest(ctx context.Context, requestID, senderID uint) error
	RemoveFriend(ctx context.Context, userID, friendID uint) error
	GetFriendRequests(ctx context.Context, userID uint) ([]models.FriendRequestInfo, error)
	GetSentRequests(ctx context.Context, userID uint) ([]models.FriendRequestInfo, error)
	GetFriendsList(ctx context.Context, userID uint) ([]models.UserBasicInfo, error)
	SearchUsers(ctx context.Context, userID uint, query string, page, limit int) ([]models.UserSearchResult, error)
}

// friendService 是 FriendService 的实现。
type friendService struct {
	db             *gorm.DB // 事务入口
	userRepo       storage.UserRepository
	requestRepo    storage.FriendRequestRepository
	friendshipRepo storage.FriendshipRepository
}

// NewFriendService creates a new FriendService instance.
func NewFriendService(
	db *gorm.DB,
	userRepo storage.UserRepository,
	requestRepo storage.FriendRequestRepository,
	friendshipRepo storage.FriendshipRepository,
) FriendService {
	return &friendService{
		db:             db,
		userRepo:       userRepo,
		requestRepo:    requestRepo,
		friendshipRepo: friendshipRepo,
	}
}

// SendFriendRequest creates a pending request for the pair. The
// friendship check, the duplicate-request check and the insert run in
// one transaction so two concurrent sends cannot both pass the checks;
// the unique indexes on the canonical friendship pair and the request
// pair back the transaction up.
func (s *friendService) SendFriendRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	var created *models.FriendRequest
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txFriendshipRepo := storage.NewGormFriendshipRepository(tx)
		txRequestRepo := storage.NewGormFriendRequestRepository(tx)

		areFriends, err := txFriendshipRepo.AreUsersFriends(ctx, senderID, receiverID)
		if err != nil {
			return fmt.Errorf("check friendship: %w", err)
		}
		if areFriends {
			return ErrAlreadyFriends
		}

		existing, err := txRequestRepo.FindBetweenUsers(ctx, senderID, receiverID)
		if err != nil {
			return fmt.Errorf("check existing request: %w", err)
		}
		if existing != nil {
			if existing.Status == models.FriendRequestStatusPending {
				return ErrRequestPending
			}
			return fmt.Errorf("%w (status: %s)", ErrRequestExists, existing.Status)
		}

		request := models.NewFriendRequest(senderID, receiverID)
		if err := txRequestRepo.Create(ctx, request); err != nil {
			return fmt.Errorf("create friend request: %w", err)
		}
		created = request
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logger.L().Infow("friend request sent", "sender", senderID, "receiver", receiverID, "request", created.ID)
	return created, nil
}

// AcceptFriendRequest marks the request accepted and creates the
// canonical friendship row in the same transaction, so two concurrent
// accepts cannot both observe "pending" and both insert.
func (s *friendService) AcceptFriendRequest(ctx context.Context, requestID, acceptingUserID uint) error {
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRequestRepo := storage.NewGormFriendRequestRepository(tx)
		txFriendshipRepo := storage.NewGormFriendshipRepository(tx)

		request, err := txRequestRepo.GetPendingByIDForReceiver(ctx, requestID, acceptingUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("retrieve friend request: %w", err)
		}

		rows, err := txRequestRepo.MarkStatus(ctx, requestID, acceptingUserID, models.FriendRequestStatusAccepted)
		if err != nil {
			return fmt.Errorf("update request status: %w", err)
		}
		if rows == 0 {
			return ErrRequestNotFound
		}

		// 好友关系插入必须是规范顺序 (min, max)。
		friendship := models.NewFriendship(request.SenderID, acceptingUserID)
		if err := txFriendshipRepo.Create(ctx, friendship); err != nil {
			return fmt.Errorf("create friendship: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	logger.L().Infow("friend request accepted", "request", requestID, "user", acceptingUserID)
	return nil
}

// RejectFriendRequest 条件更新为 rejected，零行命中视为 NotFound。
func (s *friendService) RejectFriendRequest(ctx context.Context, requestID, receiverID uint) error {
	rows, err := s.requestRepo.MarkStatus(ctx, requestID, receiverID, models.FriendRequestStatusRejected)
	if err != nil {
		return fmt.Errorf("reject friend request: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// CancelFriendRequest 由发送者撤回待处理请求（删除行）。
func (s *friendService) CancelFriendRequest(ctx context.Context, requestID, senderID uint) error {
	rows, err := s.requestRepo.DeletePendingBySender(ctx, requestID, senderID)
	if err != nil {
		return fmt.Errorf("cancel friend request: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// RemoveFriend deletes the friendship and any residual request rows
// between the pair in one transaction, so a follow-up send starts from
// a clean slate. NotFound only when neither delete touched a row.
func (s *friendService) RemoveFriend(ctx context.Context, userID, friendID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txFriendshipRepo := storage.NewGormFriendshipRepository(tx)
		txRequestRepo := storage.NewGormFriendRequestRepository(tx)

		friendRows, err := txFriendshipRepo.DeleteBetweenUsers(ctx, userID, friendID)
		if err != nil {
			return fmt.Errorf("delete friendship: %w", err)
		}
		requestRows, err := txRequestRepo.DeleteBetweenUsers(ctx, userID, friendID)
		if err != nil {
			return fmt.Errorf("delete friend requests: %w", err)
		}

		if friendRows == 0 && requestRows == 0 {
			return ErrNothingToRemove
		}
		return nil
	})
}

// GetFriendRequests 列出发给该用户的待处理请求。
func (s *friendService) GetFriendRequests(ctx context.Context, userID uint) ([]models.FriendRequestInfo, error) {
	return s.requestRepo.GetPendingForReceiver(ctx, userID)
}

// GetSentRequests 列出该用户发出的待处理请求。
func (s *friendService) GetSentRequests(ctx context.Context, userID uint) ([]models.FriendRequestInfo, error) {
	return s.requestRepo.GetPendingFromSender(ctx, userID)
}

// GetFriendsList 返回该用户全部好友的公开信息。
func (s *friendService) GetFriendsList(ctx context.Context, userID uint) ([]models.UserBasicInfo, error) {
	return s.friendshipRepo.GetFriendsOf(ctx, userID)
}

// SearchUsers returns users annotated with their relationship to the
// searcher, optionally filtered by name, paginated.
func (s *friendService) SearchUsers(ctx context.Context, userID uint, query string, page, limit int) ([]models.UserSearchResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.userRepo.SearchUsersWithRelationship(ctx, userID, query, limit, offset)
}
