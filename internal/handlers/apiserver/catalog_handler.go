package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"places-go/internal/logger"
	"places-go/internal/models"
	"places-go/internal/services"
	"places-go/internal/storage"
)

// CatalogHandler 封装了分类与地点目录的只读 HTTP 处理器方法。
type CatalogHandler struct {
	CatalogService services.CatalogService
}

// NewCatalogHandler 创建一个新的 CatalogHandler 实例。
func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{CatalogService: catalogService}
}

// categoryRef 把分类换成带图标/配图 URL 的表示，二进制数据不进列表。
func categoryRef(c *models.Category) models.CategoryRef {
	return models.CategoryRef{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IconURL:     fmt.Sprintf("/api/categories/%d/icon", c.ID),
		ImageURL:    fmt.Sprintf("/api/categories/%d/image", c.ID),
	}
}

// GetCategories 处理 GET /categories。
func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CatalogService.GetCategories(r.Context())
	if err != nil {
		logger.L().Errorw("list categories", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	refs := make([]models.CategoryRef, 0, len(categories))
	for i := range categories {
		refs = append(refs, categoryRef(&categories[i]))
	}
	writeJSONResponse(w, http.StatusOK, refs)
}

// GetCategory 处理 GET /categories/{id}。
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	category, err := h.CatalogService.GetCategoryByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("get category", "category", id, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, categoryRef(category))
}

// GetCategoryIcon 处理 GET /categories/{id}/icon：返回原始图片字节。
func (h *CatalogHandler) GetCategoryIcon(w http.ResponseWriter, r *http.Request) {
	h.serveCategoryBytes(w, r, h.CatalogService.GetCategoryIcon)
}

// GetCategoryImage 处理 GET /categories/{id}/image：返回原始图片字节。
func (h *CatalogHandler) GetCategoryImage(w http.ResponseWriter, r *http.Request) {
	h.serveCategoryBytes(w, r, h.CatalogService.GetCategoryImage)
}

func (h *CatalogHandler) serveCategoryBytes(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, id uint) ([]byte, error)) {
	id, err := storage.StrToUint(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	data, err := fetch(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("get category image data", "category", id, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetPlaces 处理 GET /places。
func (h *CatalogHandler) GetPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.CatalogService.GetPlaces(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrPlaceNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("list places", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, places)
}

// GetPlacesByCategory 处理 GET /categories/{categoryId}/places。
func (h *CatalogHandler) GetPlacesByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := storage.StrToUint(mux.Vars(r)["categoryId"])
	if err != nil {
		writeJSONError(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	places, err := h.CatalogService.GetPlacesByCategory(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, services.ErrPlaceNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L().Errorw("list places by category", "category", categoryID, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, places)
}
