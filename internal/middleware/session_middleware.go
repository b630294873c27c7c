package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"places-go/internal/logger"
	"places-go/internal/session"
)

// contextKey 是用于在 context.Context 中存储值的自定义类型，以避免键冲突。
type contextKey string

// UserIDKey 是用于在上下文中存储用户ID的键。
const UserIDKey contextKey = "userID"

// SessionHeader is the header carrying the opaque session token.
const SessionHeader = "session-id"

// CheckSession 验证 session-id 头并将用户 ID 写入请求上下文。
// Verification itself refreshes the session's sliding window.
func CheckSession(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionHeader)
			if token == "" {
				writeUnauthorized(w, "Session ID is required")
				return
			}

			userID, err := store.Verify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, session.ErrInvalidSession) {
					logger.L().Errorw("session verification failed", "error", err)
				}
				writeUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext 从上下文中获取用户ID。
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
