package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"places-go/internal/logger"
	"places-go/internal/middleware"
	"places-go/internal/services"
	"places-go/internal/storage"
)

// NotificationHandler 封装了通知相关的 HTTP 处理器方法。
// 所有方法都要求会话中间件先写入当前用户 ID。
type NotificationHandler struct {
	NotificationService services.NotificationService
}

// NewNotificationHandler 创建一个新的 NotificationHandler 实例。
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{NotificationService: notificationService}
}

// SendNotification 处理 POST /notifications/send：向全部活跃用户广播新内容。
func (h *NotificationHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ContentType string `json:"content_type"`
		ContentID   uint   `json:"content_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContentID == 0 {
		writeJSONError(w, "Valid content_type and content_id are required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	notification, err := h.NotificationService.SendContentNotification(
		r.Context(), userID, services.ContentType(req.ContentType), req.ContentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownContentType):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrContentNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			logger.L().Errorw("send notification", "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, notification)
}

// GetNotifications 处理 GET /notifications?limit=&unreadOnly=。
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := intQueryParam(r, "limit", 20)
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

	notifications, err := h.NotificationService.GetUserNotifications(r.Context(), userID, limit, unreadOnly)
	if err != nil {
		logger.L().Errorw("get notifications", "user", userID, "error", err)
		writeJSONError(w, "Failed to fetch notifications", http.StatusInternalServerError)
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	writeEnvelope(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    notifications,
		Meta: map[string]int{
			"total":  len(notifications),
			"unread": unread,
		},
	})
}

// MarkAsRead 处理 PUT /notifications/{id}/read，幂等。
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	notificationID, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := h.NotificationService.MarkAsRead(r.Context(), userID, notificationID); err != nil {
		logger.L().Errorw("mark notification as read", "user", userID, "notification", notificationID, "error", err)
		writeJSONError(w, "Failed to mark notification as read", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Notification marked as read")
}

// MarkAllAsRead 处理 PUT /notifications/mark-all-read。
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.NotificationService.MarkAllAsRead(r.Context(), userID); err != nil {
		logger.L().Errorw("mark all notifications as read", "user", userID, "error", err)
		writeJSONError(w, "Failed to mark all notifications as read", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "All notifications marked as read")
}

// DeleteNotification 处理 DELETE /notifications/{id}：仅删除本人的扇出记录。
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	notificationID, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	if err := h.NotificationService.DeleteUserNotification(r.Context(), userID, notificationID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("delete notification", "user", userID, "notification", notificationID, "error", err)
		writeJSONError(w, "Failed to delete notification", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Notification deleted successfully")
}
