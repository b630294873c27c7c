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

// FavoriteHandler 封装了收藏相关的 HTTP 处理器方法。
type FavoriteHandler struct {
	FavoriteService services.FavoriteService
}

// NewFavoriteHandler 创建一个新的 FavoriteHandler 实例。
func NewFavoriteHandler(favoriteService services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{FavoriteService: favoriteService}
}

// AddFavorite 处理 POST /favorites。
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  uint `json:"userId"`
		PlaceID uint `json:"placeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 || req.PlaceID == 0 {
		writeJSONError(w, "Valid userId and placeId are required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.FavoriteService.AddFavorite(r.Context(), req.UserID, req.PlaceID); err != nil {
		if errors.Is(err, services.ErrAlreadyFavorite) {
			writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		logger.L().Errorw("add favorite", "user", req.UserID, "place", req.PlaceID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusCreated, "Place added to favorites")
}

// RemoveFavorite 处理 DELETE /favorites/{userId}/{placeId}。
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := storage.StrToUint(vars["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	placeID, err := storage.StrToUint(vars["placeId"])
	if err != nil {
		writeJSONError(w, "Invalid place ID", http.StatusBadRequest)
		return
	}

	if err := h.FavoriteService.RemoveFavorite(r.Context(), userID, placeID); err != nil {
		if errors.Is(err, services.ErrNotFavorite) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("remove favorite", "user", userID, "place", placeID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Place removed from favorites")
}

// GetUserFavorites 处理 GET /favorites/user/{userId}。
func (h *FavoriteHandler) GetUserFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := storage.StrToUint(mux.Vars(r)["userId"])
	if err != nil {
		writeJSONError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	favorites, err := h.FavoriteService.GetUserFavorites(r.Context(), userID)
	if err != nil {
		logger.L().Errorw("get user favorites", "user", userID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, favorites)
}
