package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"places-go/internal/config"
	"places-go/internal/logger"
	"places-go/internal/middleware"
	"places-go/internal/models"
	"places-go/internal/services"
	"places-go/internal/session"
)

// AuthHandler 封装了认证相关的 HTTP 处理器方法。
type AuthHandler struct {
	AuthService services.AuthService
	SessionCfg  config.SessionConfig
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(authService services.AuthService, sessionCfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		AuthService: authService,
		SessionCfg:  sessionCfg,
	}
}

// RegisterRequest 是用户注册请求的结构体。
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest 是用户登录请求的结构体。
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse 是成功登录后返回的结构体。
type LoginResponse struct {
	SessionID string       `json:"session_id"`
	ExpiresIn int          `json:"expires_in"` // 秒
	User      *models.User `json:"user"`
}

// Register 处理用户注册请求。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		writeJSONError(w, "Email, password, first name and last name are required", http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			writeJSONError(w, err.Error(), http.StatusConflict)
		} else {
			logger.L().Errorw("register", "error", err)
			writeJSONError(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}

	user.PasswordHash = ""
	writeJSONResponse(w, http.StatusCreated, user)
}

// Login 处理用户登录请求，成功后创建服务端会话。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" {
		writeJSONError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	sessionID, user, err := h.AuthService.Login(r.Context(), req.Email, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailNotRegistered):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrInvalidCredentials):
			writeJSONError(w, err.Error(), http.StatusUnauthorized)
		default:
			logger.L().Errorw("login", "error", err)
			writeJSONError(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, LoginResponse{
		SessionID: sessionID,
		ExpiresIn: int(h.SessionCfg.TTL.Seconds()),
		User:      user,
	})
}

// Logout 销毁当前会话。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(middleware.SessionHeader)
	if sessionID == "" {
		writeJSONError(w, "Missing session-id header", http.StatusBadRequest)
		return
	}

	if err := h.AuthService.Logout(r.Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			writeJSONError(w, "Failed to destroy session", http.StatusInternalServerError)
			return
		}
		logger.L().Errorw("logout", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Logged out successfully")
}

// clientIP 提取请求来源 IP，优先反向代理头。
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
