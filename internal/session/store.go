package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidSession 表示令牌不存在或已超过滑动过期窗口。
var ErrInvalidSession = errors.New("invalid or expired session")

// Store manages opaque session tokens with sliding expiration: every
// successful Verify pushes the expiry out by the full TTL again.
type Store interface {
	Create(ctx context.Context, userID uint, ipAddress, userAgent string) (string, error)
	Verify(ctx context.Context, token string) (uint, error)
	Destroy(ctx context.Context, token string) (bool, error)
}

// redisStore 是 Store 的 Redis 实现。
// 每个会话是一个 hash，TTL 即过期窗口；Verify 成功时刷新 TTL。
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store with the given
// sliding expiration window.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

const sessionKeyPrefix = "session:"

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Create generates a cryptographically random opaque token and persists
// the session with its client metadata.
func (s *redisStore) Create(ctx context.Context, userID uint, ipAddress, userAgent string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	key := sessionKey(token)
	err := s.client.HSet(ctx, key, map[string]interface{}{
		"user_id":       userID,
		"ip_address":    ipAddress,
		"user_agent":    userAgent,
		"last_activity": time.Now().Unix(),
	}).Err()
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("set session expiry: %w", err)
	}
	return token, nil
}

// Verify resolves a token to its user ID and refreshes the sliding
// window. Returns ErrInvalidSession when the token is unknown or the
// window has elapsed.
func (s *redisStore) Verify(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}
	key := sessionKey(token)
	val, err := s.client.HGet(ctx, key, "user_id").Result()
	if err == redis.Nil {
		return 0, ErrInvalidSession
	}
	if err != nil {
		return 0, fmt.Errorf("look up session: %w", err)
	}

	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("corrupt session user id %q: %w", val, err)
	}

	// 刷新滑动窗口与最后活动时间。
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, "last_activity", time.Now().Unix())
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("refresh session: %w", err)
	}
	return uint(userID), nil
}

// Destroy deletes the session and reports whether one existed.
func (s *redisStore) Destroy(ctx context.Context, token string) (bool, error) {
	deleted, err := s.client.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("destroy session: %w", err)
	}
	return deleted > 0, nil
}
