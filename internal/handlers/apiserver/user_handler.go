package apiserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"places-go/internal/config"
	"places-go/internal/logger"
	"places-go/internal/services"
	"places-go/internal/storage"
)

const defaultMaxMemory = 32 << 20 // multipart 表单非文件部分的内存上限

// UserHandler 封装了用户资料相关的 HTTP 处理器方法。
type UserHandler struct {
	UserService services.UserService
	FileStorage storage.FileStorage
	StorageCfg  config.StorageConfig
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService, fileStorage storage.FileStorage, storageCfg config.StorageConfig) *UserHandler {
	return &UserHandler{
		UserService: userService,
		FileStorage: fileStorage,
		StorageCfg:  storageCfg,
	}
}

// GetUserProfile 处理 GET /users/{id}。
func (h *UserHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetUserProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("get user profile", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateUserProfile handles PUT /users/{id} as a multipart form:
// text fields first_name, last_name, bio plus an optional
// profile_picture file. Only fields present in the form are updated.
func (h *UserHandler) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	maxUploadSize := h.StorageCfg.MaxFileSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSONError(w, fmt.Sprintf("File too large, max %d MB", maxUploadSize>>20), http.StatusRequestEntityTooLarge)
		} else {
			writeJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		}
		return
	}

	var update storage.UserProfileUpdate
	if values, ok := r.MultipartForm.Value["first_name"]; ok && len(values) > 0 {
		update.FirstName = &values[0]
	}
	if values, ok := r.MultipartForm.Value["last_name"]; ok && len(values) > 0 {
		update.LastName = &values[0]
	}
	if values, ok := r.MultipartForm.Value["bio"]; ok && len(values) > 0 {
		update.Bio = &values[0]
	}

	file, header, err := r.FormFile("profile_picture")
	if err == nil {
		defer file.Close()
		url, saveErr := h.FileStorage.SaveImage(file, header.Filename, "profiles")
		if saveErr != nil {
			logger.L().Errorw("save profile picture", "user", userID, "error", saveErr)
			writeJSONError(w, "Failed to store profile picture", http.StatusInternalServerError)
			return
		}
		update.ProfilePicture = &url
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeJSONError(w, "Invalid profile_picture upload", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UpdateUserProfile(r.Context(), userID, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFieldsToUpdate):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			logger.L().Errorw("update user profile", "user", userID, "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// SearchUsers 处理 GET /users/search/{userId}：按姓名模糊检索，带分页元数据。
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	query := r.URL.Query().Get("query")
	page := intQueryParam(r, "page", 1)
	limit := intQueryParam(r, "limit", 10)

	users, total, err := h.UserService.SearchUsers(r.Context(), userID, query, page, limit)
	if err != nil {
		logger.L().Errorw("search users", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeEnvelope(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    users,
		Meta: map[string]interface{}{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}
