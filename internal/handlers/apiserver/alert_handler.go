package apiserver

import (
	"net/http"
	"strconv"

	"places-go/internal/logger"
	"places-go/internal/services"
)

// AlertHandler 封装了坐标告警的 HTTP 处理器方法。
type AlertHandler struct {
	AlertService services.AlertService
}

// NewAlertHandler 创建一个新的 AlertHandler 实例。
func NewAlertHandler(alertService services.AlertService) *AlertHandler {
	return &AlertHandler{AlertService: alertService}
}

// CheckAlert 处理 GET /alerts/check?lat=&lng=。
func (h *AlertHandler) CheckAlert(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeJSONError(w, "Valid lat and lng are required", http.StatusBadRequest)
		return
	}

	alert, err := h.AlertService.CheckAlert(r.Context(), lat, lng)
	if err != nil {
		logger.L().Errorw("check alert", "lat", lat, "lng", lng, "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if alert == nil {
		writeJSONResponse(w, http.StatusOK, map[string]bool{"alert": false})
		return
	}
	writeEnvelope(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"alert": true, "details": alert},
	})
}
