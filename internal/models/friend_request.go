package models

import "time"

// FriendRequestStatus 定义好友请求的状态。
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// FriendRequest 代表一条好友请求记录。
// A pair of users has at most one row here, in any status, until the
// row is cleared by a cancel or an unfriend. No soft delete: cancel and
// unfriend remove the row so the pair can request again.
// PairMinID/PairMaxID carry the canonical (min, max) pair so the unique
// index blocks mirrored rows (A→B and B→A) regardless of direction,
// the same way Friendship stores its pair.
type FriendRequest struct {
	ID         uint                `gorm:"primarykey" json:"id"`
	SenderID   uint                `gorm:"not null" json:"sender_id"`
	ReceiverID uint                `gorm:"not null" json:"receiver_id"`
	PairMinID  uint                `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"-"`
	PairMaxID  uint                `gorm:"not null;uniqueIndex:idx_friend_request_pair" json:"-"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// NewFriendRequest builds a pending request with the canonical pair
// columns filled in.
func NewFriendRequest(senderID, receiverID uint) *FriendRequest {
	minID, maxID := CanonicalPair(senderID, receiverID)
	return &FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		PairMinID:  minID,
		PairMaxID:  maxID,
		Status:     FriendRequestStatusPending,
	}
}

// FriendRequestInfo is a pending request joined with the counterpart's
// public info, for the received/sent request listings.
type FriendRequestInfo struct {
	ID             uint      `json:"id"`
	SenderID       uint      `json:"sender_id,omitempty"`
	ReceiverID     uint      `json:"receiver_id,omitempty"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
