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

// GroupHandler 封装了群组相关的 HTTP 处理器方法。
type GroupHandler struct {
	GroupService services.GroupService
	FileStorage  storage.FileStorage
	StorageCfg   config.StorageConfig
}

// NewGroupHandler 创建一个新的 GroupHandler 实例。
func NewGroupHandler(groupService services.GroupService, fileStorage storage.FileStorage, storageCfg config.StorageConfig) *GroupHandler {
	return &GroupHandler{
		GroupService: groupService,
		FileStorage:  fileStorage,
		StorageCfg:   storageCfg,
	}
}

// parseImageForm 解析带可选 image 文件的 multipart 表单，返回保存后的 URL。
func (h *GroupHandler) parseImageForm(w http.ResponseWriter, r *http.Request) (imageURL string, hasImage bool, err error) {
	maxUploadSize := h.StorageCfg.MaxFileSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		if err.Error() == "http: request body too large" {
			return "", false, fmt.Errorf("file too large, max %d MB", maxUploadSize>>20)
		}
		return "", false, errors.New("invalid multipart form")
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.New("invalid image upload")
	}
	defer file.Close()

	url, err := h.FileStorage.SaveImage(file, header.Filename, "groups")
	if err != nil {
		return "", false, fmt.Errorf("store image: %w", err)
	}
	return url, true, nil
}

// CreateGroup 处理 POST /create-group/{creatorId}：multipart 表单
// 携带 name、description 与可选 image 文件。
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	creatorID, err := storage.StrToUint(mux.Vars(r)["creatorId"])
	if err != nil {
		writeJSONError(w, "Invalid creator ID", http.StatusBadRequest)
		return
	}

	imageURL, _, err := h.parseImageForm(w, r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")

	group, err := h.GroupService.CreateGroup(r.Context(), creatorID, name, description, imageURL)
	if err != nil {
		if errors.Is(err, services.ErrGroupNameRequired) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L().Errorw("create group", "creator", creatorID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusCreated, group)
}

// UpdateGroup 处理 PUT /groups/{groupId}：部分更新，仅携带的字段生效。
func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := storage.StrToUint(mux.Vars(r)["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	imageURL, hasImage, err := h.parseImageForm(w, r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var update storage.GroupUpdate
	if values, ok := r.MultipartForm.Value["name"]; ok && len(values) > 0 {
		update.Name = &values[0]
	}
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		update.Description = &values[0]
	}
	if hasImage {
		update.Image = &imageURL
	}

	userID, err := storage.StrToUint(r.FormValue("userId"))
	if err != nil {
		writeJSONError(w, "Valid userId is required", http.StatusBadRequest)
		return
	}

	if err := h.GroupService.UpdateGroup(r.Context(), userID, groupID, update); err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNameRequired):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrGroupNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotGroupAdmin):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			logger.L().Errorw("update group", "group", groupID, "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONMessage(w, http.StatusOK, "Group updated")
}

// DeleteGroup 处理 DELETE /groups/{groupId}?userId=，仅创建者可删。
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := storage.StrToUint(mux.Vars(r)["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	userID, err := storage.StrToUint(r.URL.Query().Get("userId"))
	if err != nil {
		writeJSONError(w, "Valid userId is required", http.StatusBadRequest)
		return
	}

	if err := h.GroupService.DeleteGroup(r.Context(), userID, groupID); err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotGroupCreator):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			logger.L().Errorw("delete group", "group", groupID, "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONMessage(w, http.StatusOK, "Group deleted")
}

// AddMember 处理 POST /groups/{groupId}/add-member/{userId}。
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	groupID, err := storage.StrToUint(vars["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	userID, err := storage.StrToUint(vars["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.GroupService.AddMember(r.Context(), groupID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNotFound), errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrAlreadyMember):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			logger.L().Errorw("add group member", "group", groupID, "user", userID, "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONMessage(w, http.StatusCreated, "Member added")
}

// LeaveGroup 处理 POST /groups/{groupId}/leave，body 或表单携带 userId。
func (h *GroupHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := storage.StrToUint(mux.Vars(r)["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}
	userID, err := userIDFromBody(r)
	if err != nil {
		writeJSONError(w, "Valid userId is required", http.StatusBadRequest)
		return
	}

	if err := h.GroupService.LeaveGroup(r.Context(), groupID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrGroupNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotMember):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrCreatorCannotLeave):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			logger.L().Errorw("leave group", "group", groupID, "user", userID, "error", err)
			writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}
	writeJSONMessage(w, http.StatusOK, "Left group")
}

// GetGroupMembers 处理 GET /groups/{groupId}/members。
func (h *GroupHandler) GetGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := storage.StrToUint(mux.Vars(r)["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	members, err := h.GroupService.GetGroupMembers(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("get group members", "group", groupID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, members)
}

// GetGroupCreator 处理 GET /groups/{groupId}/creator。
func (h *GroupHandler) GetGroupCreator(w http.ResponseWriter, r *http.Request) {
	groupID, err := storage.StrToUint(mux.Vars(r)["groupId"])
	if err != nil {
		writeJSONError(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	creatorID, err := h.GroupService.GetGroupCreator(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("get group creator", "group", groupID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]uint{"creator_id": creatorID})
}

// GetUserGroups 处理 GET /user-groups/{userId}：该用户创建的群组。
func (h *GroupHandler) GetUserGroups(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	groups, err := h.GroupService.GetCreatedGroups(r.Context(), userID)
	if err != nil {
		logger.L().Errorw("get created groups", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, groups)
}

// GetMemberGroups 处理 GET /member-groups/{userId}：加入的非自建群组。
func (h *GroupHandler) GetMemberGroups(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	groups, err := h.GroupService.GetMemberGroups(r.Context(), userID)
	if err != nil {
		logger.L().Errorw("get member groups", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, groups)
}
