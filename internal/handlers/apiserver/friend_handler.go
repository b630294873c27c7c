package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"places-go/internal/logger"
	"places-go/internal/services"
	"places-go/internal/storage"
)

// FriendHandler 封装了好友关系相关的 HTTP 处理器方法。
type FriendHandler struct {
	FriendService services.FriendService
}

// NewFriendHandler 创建一个新的 FriendHandler 实例。
func NewFriendHandler(friendService services.FriendService) *FriendHandler {
	return &FriendHandler{FriendService: friendService}
}

// SendFriendRequest 处理 POST /request/{senderId}，body 携带 receiverId。
func (h *FriendHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	senderID, err := storage.StrToUint(mux.Vars(r)["senderId"])
	if err != nil {
		writeJSONError(w, "Invalid sender ID", http.StatusBadRequest)
		return
	}

	var req struct {
		ReceiverID uint `json:"receiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReceiverID == 0 {
		writeJSONError(w, "Valid receiverId is required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	request, err := h.FriendService.SendFriendRequest(r.Context(), senderID, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfRequest):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrAlreadyFriends),
			errors.Is(err, services.ErrRequestPending),
			errors.Is(err, services.ErrRequestExists):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			logger.L().Errorw("send friend request", "sender", senderID, "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, request)
}

// AcceptFriendRequest 处理 PUT /accept/{requestId}，body 携带接受者 userId。
func (h *FriendHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := storage.StrToUint(mux.Vars(r)["requestId"])
	if err != nil {
		writeJSONError(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID uint `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeJSONError(w, "Valid userId is required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.FriendService.AcceptFriendRequest(r.Context(), requestID, req.UserID); err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("accept friend request", "request", requestID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Friend request accepted")
}

// RejectFriendRequest 处理 PUT /reject/{requestId}。
func (h *FriendHandler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := storage.StrToUint(mux.Vars(r)["requestId"])
	if err != nil {
		writeJSONError(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID uint `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeJSONError(w, "Valid userId is required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.FriendService.RejectFriendRequest(r.Context(), requestID, req.UserID); err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("reject friend request", "request", requestID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Friend request rejected")
}

// CancelFriendRequest 处理 DELETE /cancel-request/{requestId}。
func (h *FriendHandler) CancelFriendRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := storage.StrToUint(mux.Vars(r)["requestId"])
	if err != nil {
		writeJSONError(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	var req struct {
		UserID uint `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeJSONError(w, "Valid userId is required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.FriendService.CancelFriendRequest(r.Context(), requestID, req.UserID); err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("cancel friend request", "request", requestID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Friend request cancelled")
}

// RemoveFriend 处理 DELETE /friends/{userId}/{friendId}。
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := storage.StrToUint(vars["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	friendID, err := storage.StrToUint(vars["friendId"])
	if err != nil {
		writeJSONError(w, "Invalid friend ID", http.StatusBadRequest)
		return
	}

	if err := h.FriendService.RemoveFriend(r.Context(), userID, friendID); err != nil {
		if errors.Is(err, services.ErrNothingToRemove) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("remove friend", "user", userID, "friend", friendID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Friend removed")
}

// GetFriendRequests 处理 GET /requests/{userId}：收到的待处理请求。
func (h *FriendHandler) GetFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	requests, err := h.FriendService.GetFriendRequests(r.Context(), userID)
	if err != nil {
		logger.L().Errorw("get friend requests", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

// GetSentRequests 处理 GET /sent-requests/{userId}：发出的待处理请求。
func (h *FriendHandler) GetSentRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	requests, err := h.FriendService.GetSentRequests(r.Context(), userID)
	if err != nil {
		logger.L().Errorw("get sent requests", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

// GetFriendsList 处理 GET /friends/{userId}。
func (h *FriendHandler) GetFriendsList(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	friends, err := h.FriendService.GetFriendsList(r.Context(), userID)
	if err != nil {
		logger.L().Errorw("get friends list", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, friends)
}

// SearchUsers 处理 GET /search/{userId}：带关系标注的用户搜索。
func (h *FriendHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	query := r.URL.Query().Get("query")
	page := intQueryParam(r, "page", 1)
	limit := intQueryParam(r, "limit", 10)

	results, err := h.FriendService.SearchUsers(r.Context(), userID, query, page, limit)
	if err != nil {
		logger.L().Errorw("search users with relationship", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, results)
}
