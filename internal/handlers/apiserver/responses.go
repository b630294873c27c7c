package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"places-go/internal/logger"
)

// APIResponse 是统一的 JSON 响应信封。
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// writeJSONResponse 写入 success=true 的数据响应。
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	writeEnvelope(w, statusCode, APIResponse{Success: true, Data: data})
}

// writeJSONMessage 写入 success=true 的纯文本消息响应。
func writeJSONMessage(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, APIResponse{Success: true, Message: message})
}

// writeJSONError 写入 success=false 的错误响应。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeEnvelope(w, statusCode, APIResponse{Success: false, Message: message})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.L().Errorw("write response", "error", err)
	}
}

// intQueryParam 解析整型查询参数，缺失或非法时用默认值。
func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// userIDFromBody 从 JSON body 的 userId 字段解析用户 ID。
func userIDFromBody(r *http.Request) (uint, error) {
	var req struct {
		UserID uint `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, err
	}
	defer r.Body.Close()
	if req.UserID == 0 {
		return 0, errors.New("missing userId")
	}
	return req.UserID, nil
}

// WriteProtectedOK 是会话探活端点的响应：确认访问被允许并回显用户 ID。
func WriteProtectedOK(w http.ResponseWriter, userID uint) {
	writeEnvelope(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Access granted",
		Data:    map[string]uint{"user_id": userID},
	})
}
