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

// MessageHandler 封装了群聊消息相关的 HTTP 处理器方法。
type MessageHandler struct {
	MessageService services.MessageService
}

// NewMessageHandler 创建一个新的 MessageHandler 实例。
func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{MessageService: messageService}
}

// SendGroupMessage 处理 POST /groups/{groupId}/messages。
func (h *MessageHandler) SendGroupMessage(w http.ResponseWriter, r *http.Request) {
	groupID, err := storage.StrToUint(mux.Vars(r)["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	var req struct {
		SenderID uint   `json:"userId"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SenderID == 0 {
		writeJSONError(w, "Valid userId and content are required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	message, err := h.MessageService.SendGroupMessage(r.Context(), groupID, req.SenderID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMessageContentRequired):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrGroupNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrSenderNotMember):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			logger.L().Errorw("send group message", "group", groupID, "sender", req.SenderID, "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusCreated, message)
}

// GetGroupMessages 处理 GET /groups/{groupId}/messages。
func (h *MessageHandler) GetGroupMessages(w http.ResponseWriter, r *http.Request) {
	groupID, err := storage.StrToUint(mux.Vars(r)["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	messages, err := h.MessageService.GetGroupMessages(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("get group messages", "group", groupID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, messages)
}

// GetUserChats 处理 GET /user-chats/{userId}。
func (h *MessageHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	chats, err := h.MessageService.GetUserChats(r.Context(), userID)
	if err != nil {
		logger.L().Errorw("get user chats", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, chats)
}
