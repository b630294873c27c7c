package apiserver

import (
	"errors"
	"net/http"
	"strconv"

	"places-go/internal/logger"
	"places-go/internal/services"
)

// RouteHandler 封装了导航路线的 HTTP 处理器方法。
type RouteHandler struct {
	RouteService services.RouteService
}

// NewRouteHandler 创建一个新的 RouteHandler 实例。
func NewRouteHandler(routeService services.RouteService) *RouteHandler {
	return &RouteHandler{RouteService: routeService}
}

// GetRoute 处理 GET /routes?endLat=&endLng=。
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	endLat, latErr := strconv.ParseFloat(r.URL.Query().Get("endLat"), 64)
	endLng, lngErr := strconv.ParseFloat(r.URL.Query().Get("endLng"), 64)
	if latErr != nil || lngErr != nil {
		writeJSONError(w, "Missing endLat or endLng", http.StatusBadRequest)
		return
	}

	plan, err := h.RouteService.GetRoute(r.Context(), endLat, endLng)
	if err != nil {
		if errors.Is(err, services.ErrRouteUnavailable) {
			writeJSONError(w, err.Error(), http.StatusBadGateway)
			return
		}
		logger.L().Errorw("get route", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, plan)
}
