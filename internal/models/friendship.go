package models

import "time"

// Friendship 代表两个用户之间的对称好友关系。
// The pair is stored canonically with User1ID < User2ID so the unique
// index rules out mirrored duplicates and existence checks can use a
// single equality on the ordered pair.
type Friendship struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	User1ID   uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"user1_id"`
	User2ID   uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFriendship returns a Friendship for the unordered pair {a, b} in
// canonical order.
func NewFriendship(a, b uint) *Friendship {
	u1, u2 := CanonicalPair(a, b)
	return &Friendship{User1ID: u1, User2ID: u2}
}

// CanonicalPair 返回 (min, max) 形式的规范用户对。
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
